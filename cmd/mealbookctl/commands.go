package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mealbook/internal/apperr"
	"mealbook/internal/config"
	"mealbook/internal/exporter"
	"mealbook/internal/model"
	"mealbook/internal/server"
	"mealbook/internal/store"
)

type cli struct {
	configPath  string
	storageRoot string
	dataDir     string
	pretty      bool

	app *server.App
}

func (c *cli) open() error {
	var (
		cfg *config.AppConfig
		err error
	)
	if c.configPath != "" {
		cfg, _, err = config.LoadConfigFrom(c.configPath)
	} else {
		cfg, _, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.storageRoot != "" {
		cfg.Storage.Root = c.storageRoot
	}
	if c.dataDir != "" {
		cfg.Data.DataDir = c.dataDir
	}
	c.app, err = server.NewApp(cfg)
	return err
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Close()
		c.app = nil
	}
}

func (c *cli) print(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if c.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// userError 분류된 오류는 사용자 메시지로 보여준다
func userError(err error) error {
	if err == nil {
		return nil
	}
	if k := apperr.KindOf(err); k != "" {
		return fmt.Errorf("[%s] %s", k, apperr.MessageOf(err))
	}
	return err
}

func parseMonthArg(s string) (int, int, error) {
	y, m, err := model.ParseYearMonth(s)
	if err != nil {
		return 0, 0, fmt.Errorf("연월 형식은 YYYY-MM 입니다: %q", s)
	}
	return y, m, nil
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "mealbookctl",
		Short:         "식대 장부 조회/내보내기와 점심조 추첨",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config.toml 경로 (기본: 실행 파일 옆)")
	rootCmd.PersistentFlags().StringVar(&c.storageRoot, "storage-root", "", "장부/좌석표 루트 폴더")
	rootCmd.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "저널 데이터 폴더")
	rootCmd.PersistentFlags().BoolVar(&c.pretty, "pretty", false, "JSON 들여쓰기")

	// 장부 파일 위치
	var (
		year, month int
		lenient     bool
	)
	locateCmd := &cobra.Command{
		Use:   "locate [name]",
		Short: "직원 장부 파일 찾기",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == 0 {
				month = int(time.Now().Month())
			}
			locate := c.app.Locator.Locate
			if lenient {
				locate = c.app.Locator.LocateLenient
			}
			meta, err := locate(cmd.Context(), args[0], month, year)
			if err != nil {
				return userError(err)
			}
			return c.print(cmd.OutOrStdout(), meta)
		},
	}
	locateCmd.Flags().IntVar(&year, "year", 0, "연도 (0 이면 올해)")
	locateCmd.Flags().IntVar(&month, "month", 0, "월 (0 이면 이번 달)")
	locateCmd.Flags().BoolVar(&lenient, "lenient", false, "이름 부분 일치 허용")

	listCmd := &cobra.Command{
		Use:   "list [name] [YYYY-MM]",
		Short: "한 달 장부 내역",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, m, err := parseMonthArg(args[1])
			if err != nil {
				return err
			}
			rows, err := c.app.Ledger.Month(cmd.Context(), args[0], y, m)
			if err != nil {
				return userError(err)
			}
			return c.print(cmd.OutOrStdout(), rows)
		},
	}

	calcCmd := &cobra.Command{
		Use:   "calc [name] [YYYY-MM]",
		Short: "월 정산",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, m, err := parseMonthArg(args[1])
			if err != nil {
				return err
			}
			calc, err := c.app.Ledger.Calculation(cmd.Context(), args[0], y, m)
			if err != nil {
				return userError(err)
			}
			return c.print(cmd.OutOrStdout(), calc)
		},
	}

	var format, output string
	exportCmd := &cobra.Command{
		Use:   "export [name] [YYYY-MM]",
		Short: "월 내역 내보내기 (csv / xlsx)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, m, err := parseMonthArg(args[1])
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("invalid format: %s (must be csv or xlsx)", format)
			}
			if format == "xlsx" && output == "" {
				return fmt.Errorf("xlsx 는 --output 경로가 필요합니다")
			}
			rows, err := c.app.Ledger.Month(cmd.Context(), args[0], y, m)
			if err != nil {
				return userError(err)
			}

			if format == "csv" {
				w := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return exporter.WriteMonthCSV(w, rows)
			}

			calc, err := c.app.Ledger.Calculation(cmd.Context(), args[0], y, m)
			if err != nil {
				return userError(err)
			}
			f, err := c.app.Exporter.MonthWorkbook(args[0], calc, rows)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			if err := f.SaveAs(output); err != nil {
				return fmt.Errorf("save %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "저장: %s\n", output)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "csv 또는 xlsx")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "출력 파일 (csv 기본: stdout)")

	// 점심조
	seatCmd := &cobra.Command{
		Use:   "seat",
		Short: "점심조 좌석",
	}
	seatAssignCmd := &cobra.Command{
		Use:   "assign [name]",
		Short: "빈 좌석 하나를 무작위로 배정",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			got, err := c.app.Seats.Assign(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			return c.print(cmd.OutOrStdout(), got)
		},
	}
	seatShowCmd := &cobra.Command{
		Use:   "show",
		Short: "좌석표 현황",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.Seats.Snapshot(cmd.Context())
			if err != nil {
				return userError(err)
			}
			return c.print(cmd.OutOrStdout(), snap)
		},
	}
	seatCmd.AddCommand(seatAssignCmd, seatShowCmd)

	var (
		employee string
		limit    int
	)
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "최근 장부 쓰기/좌석 배정 기록",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.app.Journal.ListJournal(cmd.Context(), store.JournalFilter{Employee: employee, Limit: limit})
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), items)
		},
	}
	journalCmd.Flags().StringVar(&employee, "employee", "", "직원 이름")
	journalCmd.Flags().IntVar(&limit, "limit", store.DefaultJournalLimit, "최대 건수")

	rootCmd.AddCommand(locateCmd, listCmd, calcCmd, exportCmd, seatCmd, journalCmd)
	return rootCmd
}
