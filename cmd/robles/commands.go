package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"robles/internal/forms"
	"robles/internal/listview"
	"robles/internal/logging"
	"robles/internal/mockserver"
	"robles/internal/records"
	"robles/internal/ui"
)

var (
	reportQuery  string
	reportPage   int
	reportFormat string
	mockAddr     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print one page of the per-client report",
	Long: `Fetches the per-client summary and prints one page of it, filtered by
--query and sorted by client name. Needs a saved session unless --mock is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFormat != "table" && reportFormat != "yaml" {
			return fmt.Errorf("unknown format %q (want table or yaml)", reportFormat)
		}
		if !cfg.Mock {
			s, err := sessionStore().Load()
			if err != nil {
				return err
			}
			if !s.Valid() {
				return errors.New("not signed in; open the dashboard and sign in first")
			}
		}

		ctx, cancel := requestContext(cmd.Context())
		defer cancel()
		rows, err := newService().Report(ctx)
		if err != nil {
			logger.Error("report failed", zap.Error(err))
			return fmt.Errorf("fetch report: %w", err)
		}

		view := reportView(rows, reportQuery, reportPage, cfg.UI.ReportPageSize)
		logger.Info("report printed", zap.Int("total", view.Total), zap.Int("page", view.Page))
		if reportFormat == "yaml" {
			return writeReportYAML(cmd.OutOrStdout(), view)
		}
		return writeReportTable(cmd.OutOrStdout(), view)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessionStore().Clear(); err != nil {
			return err
		}
		logger.Info("session cleared", zap.String("path", cfg.SessionFile))
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve the in-memory records service over HTTP",
	Long: `Serves the same endpoints as the real records service, backed by seeded
in-memory data. Sign in with admin@robles.hn / Robles2024.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l := logger
		if !cmd.Flags().Changed("log-file") {
			var err error
			if l, err = logging.New(cfg.Log.Level, "stderr"); err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return mockserver.Run(ctx, mockAddr, mockserver.New(records.NewMockClient(), l), l)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportQuery, "query", "q", "", "search text")
	reportCmd.Flags().IntVarP(&reportPage, "page", "p", 1, "page number")
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "output format: table or yaml")

	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":3001", "listen address")
}

// requestContext bounds a headless request by the configured timeout.
func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if cfg.Timeout > 0 {
		return context.WithTimeout(parent, cfg.Timeout)
	}
	return context.WithCancel(parent)
}

func reportView(rows []records.ReportRow, query string, page, size int) listview.View[records.ReportRow] {
	spec := ui.ReportSpec()
	spec.PageSize = size
	return listview.Derive(spec, rows, listview.State{
		Query: query,
		Sort:  listview.Sort{Field: "name", Dir: listview.Asc},
		Page:  page,
	})
}

func writeReportTable(w io.Writer, v listview.View[records.ReportRow]) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Client", "Phone", "Email", "Total paid", "Payments", "Last payment", "Visits", "Last visit", "Upcoming")
	for _, r := range v.Items {
		t.Row(
			r.Name,
			r.Phone,
			r.Email,
			forms.FormatCurrency(r.TotalPaid),
			strconv.Itoa(r.PaymentCount),
			forms.FormatDate(r.LastPayment),
			strconv.Itoa(r.AppointmentCount),
			forms.FormatDateTime(r.LastAppointment),
			ui.Upcoming(r),
		)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "showing %d-%d of %d, page %d/%d\n", v.First, v.Last, v.Total, v.Page, v.Pages)
	return err
}

type reportLine struct {
	Client          string `json:"client"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	TotalPaid       string `json:"total_paid"`
	Payments        int    `json:"payments"`
	LastPayment     string `json:"last_payment,omitempty"`
	Visits          int    `json:"visits"`
	LastVisit       string `json:"last_visit,omitempty"`
	HasUpcomingDate bool   `json:"upcoming"`
}

type reportPageOut struct {
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
	Total int          `json:"total"`
	Rows  []reportLine `json:"rows"`
}

func writeReportYAML(w io.Writer, v listview.View[records.ReportRow]) error {
	out := reportPageOut{Page: v.Page, Pages: v.Pages, Total: v.Total, Rows: []reportLine{}}
	for _, r := range v.Items {
		out.Rows = append(out.Rows, reportLine{
			Client:          r.Name,
			Phone:           r.Phone,
			Email:           r.Email,
			TotalPaid:       forms.FormatCurrency(r.TotalPaid),
			Payments:        r.PaymentCount,
			LastPayment:     r.LastPayment,
			Visits:          r.AppointmentCount,
			LastVisit:       r.LastAppointment,
			HasUpcomingDate: r.HasUpcoming(),
		})
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
