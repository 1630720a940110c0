package usecase

import (
	"context"
	"net/http"
	"time"

	repo "store/internal/repository"

	"github.com/shopspring/decimal"
)

// レポートの既定期間
const defaultReportDays = 30

type DailyReportRow struct {
	Day     string `json:"day"`
	Count   int64  `json:"count"`
	Revenue int64  `json:"revenue"`
	//平均単価。割り算なのでdecimalで出す（小数2桁、文字列）
	AverageTicket string `json:"average_ticket"`
}

type DailyReportOutput struct {
	From time.Time        `json:"from"`
	To   time.Time        `json:"to"`
	Rows []DailyReportRow `json:"rows"`
}

// ReportUsecase は日次の売上レポートを担当する。
// CANCELLEDの販売は集計に含めない
type ReportUsecase struct {
	sales repo.SaleRepository
}

// DI
func NewReportUsecase(sales repo.SaleRepository) *ReportUsecase {
	return &ReportUsecase{sales: sales}
}

// DailyReport は日ごとの件数・売上・平均単価を返す。
// from/toが空なら直近30日
func (u *ReportUsecase) DailyReport(ctx context.Context, from, to time.Time) (DailyReportOutput, error) {
	now := time.Now().UTC()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultReportDays)
	}
	if from.After(to) {
		return DailyReportOutput{}, NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	stats, err := u.sales.DailyStats(ctx, from, to)
	if err != nil {
		return DailyReportOutput{}, errPersistence()
	}

	rows := make([]DailyReportRow, 0, len(stats))
	for _, st := range stats {
		avg := decimal.Zero
		if st.Count > 0 {
			avg = decimal.NewFromInt(st.Revenue).Div(decimal.NewFromInt(st.Count)).Round(2)
		}

		rows = append(rows, DailyReportRow{
			Day:           st.Day.Format("2006-01-02"),
			Count:         st.Count,
			Revenue:       st.Revenue,
			AverageTicket: avg.StringFixed(2),
		})
	}

	return DailyReportOutput{
		From: from,
		To:   to,
		Rows: rows,
	}, nil
}
