// Package mockserver serves the records API from memory so the dashboard can
// run without the real backend.
package mockserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"robles/internal/records"
)

// ListResponse is the envelope every list endpoint answers with.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type fieldError struct {
	Path string `json:"path"`
	Msg  string `json:"msg"`
}

type errorBody struct {
	Message string       `json:"message,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

// New builds the gin engine. svc is usually a records.MockClient.
func New(svc records.Service, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	RegisterRoutes(r, svc)
	return r
}

func RegisterRoutes(r *gin.Engine, svc records.Service) {
	registerEntity(r.Group("/"+string(records.Clients)),
		svc.ListClients, svc.CreateClient, svc.UpdateClient, svc.DeleteClient)
	registerEntity(r.Group("/"+string(records.Appointments)),
		svc.ListAppointments, svc.CreateAppointment, svc.UpdateAppointment, svc.DeleteAppointment)
	registerEntity(r.Group("/"+string(records.Payments)),
		svc.ListPayments, svc.CreatePayment, svc.UpdatePayment, svc.DeletePayment)

	r.GET("/reportes/clientes-resumen", func(c *gin.Context) {
		rows, err := svc.Report(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		list(c, rows)
	})

	users := r.Group("/users")
	users.POST("/login", loginHandler(svc))
	users.POST("/register", func(c *gin.Context) {
		var in records.Registration
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Message: "invalid body"})
			return
		}
		if err := svc.RegisterUser(c.Request.Context(), in); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
	})
}

func registerEntity[T, I any](
	g *gin.RouterGroup,
	listFn func(context.Context) ([]T, error),
	createFn func(context.Context, I) error,
	updateFn func(context.Context, int, I) error,
	deleteFn func(context.Context, int) error,
) {
	g.GET("", func(c *gin.Context) {
		items, err := listFn(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		list(c, items)
	})

	g.POST("/register", func(c *gin.Context) {
		var in I
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Message: "invalid body"})
			return
		}
		if err := createFn(c.Request.Context(), in); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "created"})
	})

	g.PUT("/edit/:id", func(c *gin.Context) {
		id, err := records.ParseID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Message: err.Error()})
			return
		}
		var in I
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Message: "invalid body"})
			return
		}
		if err := updateFn(c.Request.Context(), id, in); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "updated"})
	})

	g.DELETE("/delete/:id", func(c *gin.Context) {
		id, err := records.ParseID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Message: err.Error()})
			return
		}
		if err := deleteFn(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}

// loginHandler answers failures in the {errors:{field:{msg}}, message} shape
// the login form reads.
func loginHandler(svc records.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Message: "invalid body"})
			return
		}
		u, err := svc.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			var apiErr *records.APIError
			if !errors.As(err, &apiErr) {
				writeError(c, err)
				return
			}
			byField := gin.H{}
			for k, v := range apiErr.Fields {
				byField[k] = gin.H{"msg": v}
			}
			c.JSON(apiErr.Status, gin.H{"message": apiErr.Message, "errors": byField})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}

func list[T any](c *gin.Context, data []T) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{Data: data, Total: len(data)})
}

func writeError(c *gin.Context, err error) {
	var apiErr *records.APIError
	switch {
	case errors.As(err, &apiErr):
		body := errorBody{Message: apiErr.Message}
		for k, v := range apiErr.Fields {
			body.Errors = append(body.Errors, fieldError{Path: k, Msg: v})
		}
		c.JSON(apiErr.Status, body)
	case errors.Is(err, records.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Message: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody{Message: "internal error"})
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", reqID),
			zap.Duration("duration", time.Since(start)),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			logger.Error("mock request failed", append(fields, zap.String("error", errs.String()))...)
			return
		}
		logger.Info("mock request", fields...)
	}
}

// Run serves h on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock records service listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
