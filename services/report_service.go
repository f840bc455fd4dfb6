package services

import (
	"context"
	"math"
	"time"

	"restopos-backend/models"
	"restopos-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report range presets
const (
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	RangeThisWeek  = "this_week"
	RangeLastWeek  = "last_week"
	RangeThisMonth = "this_month"
	RangeLastMonth = "last_month"
	RangeCustom    = "custom"
)

const maxReportDays = 366

// countedStatuses are the order statuses that count as real orders in reports.
var countedStatuses = []string{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusCompleted}

// DateRange is a half-open interval [Start, End) of whole days.
type DateRange struct {
	Preset string
	Start  time.Time
	End    time.Time
}

func (r DateRange) Days() int { return utils.DaysBetween(r.Start, r.End) }

// Previous returns the range of equal length immediately before r. Month
// presets compare against the same number of days, not the previous month.
func (r DateRange) Previous() DateRange {
	return DateRange{Preset: r.Preset, Start: r.Start.AddDate(0, 0, -r.Days()), End: r.Start}
}

// ResolveRange turns a preset, or custom start/end dates (YYYY-MM-DD,
// inclusive), into a range in now's location.
func ResolveRange(preset, start, end string, now time.Time) (DateRange, error) {
	today := utils.BeginningOfDay(now)
	switch preset {
	case "", RangeToday:
		return DateRange{Preset: RangeToday, Start: today, End: today.AddDate(0, 0, 1)}, nil
	case RangeYesterday:
		return DateRange{Preset: preset, Start: today.AddDate(0, 0, -1), End: today}, nil
	case RangeThisWeek:
		return DateRange{Preset: preset, Start: utils.BeginningOfWeek(now), End: today.AddDate(0, 0, 1)}, nil
	case RangeLastWeek:
		week := utils.BeginningOfWeek(now)
		return DateRange{Preset: preset, Start: week.AddDate(0, 0, -7), End: week}, nil
	case RangeThisMonth:
		return DateRange{Preset: preset, Start: utils.BeginningOfMonth(now), End: today.AddDate(0, 0, 1)}, nil
	case RangeLastMonth:
		month := utils.BeginningOfMonth(now)
		return DateRange{Preset: preset, Start: month.AddDate(0, -1, 0), End: month}, nil
	case RangeCustom:
		s, err := time.ParseInLocation("2006-01-02", start, now.Location())
		if err != nil {
			return DateRange{}, invalid("invalid start date %q, use YYYY-MM-DD", start)
		}
		e, err := time.ParseInLocation("2006-01-02", end, now.Location())
		if err != nil {
			return DateRange{}, invalid("invalid end date %q, use YYYY-MM-DD", end)
		}
		if e.Before(s) {
			return DateRange{}, invalid("end date is before start date")
		}
		r := DateRange{Preset: preset, Start: s, End: e.AddDate(0, 0, 1)}
		if r.Days() > maxReportDays {
			return DateRange{}, invalid("ranges are limited to %d days", maxReportDays)
		}
		return r, nil
	default:
		return DateRange{}, invalid("unknown range %q", preset)
	}
}

type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type PaymentMethodSummary struct {
	Method     string          `json:"paymentMethod"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
	Percentage float64         `json:"percentage"`
}

type CategorySummary struct {
	Name       string          `json:"name"`
	ItemsSold  int64           `json:"itemsSold"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage float64         `json:"percentage"`
}

type ItemSummary struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	Range     string `json:"range"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	PreviousRevenue   decimal.Decimal `json:"previousRevenue"`
	RevenueChange     float64         `json:"revenueChange"`
	TotalOrders       int64           `json:"totalOrders"`
	PreviousOrders    int64           `json:"previousOrders"`
	OrdersChange      float64         `json:"ordersChange"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TotalCustomers    int64           `json:"totalCustomers"`

	OrdersByStatus map[string]int64       `json:"ordersByStatus"`
	DailySales     []DailySales           `json:"dailySales"`
	PaymentMethods []PaymentMethodSummary `json:"paymentMethods"`
	CategorySales  []CategorySummary      `json:"categorySales"`
	TopItems       []ItemSummary          `json:"topItems"`
}

type Dashboard struct {
	TodayRevenue   decimal.Decimal  `json:"todayRevenue"`
	RevenueChange  float64          `json:"revenueChange"`
	TodayOrders    int64            `json:"todayOrders"`
	ActiveOrders   int64            `json:"activeOrders"`
	TablesByStatus map[string]int64 `json:"tablesByStatus"`
	RecentOrders   []models.Order   `json:"recentOrders"`
	TopItemsToday  []ItemSummary    `json:"topItemsToday"`
}

// ReportService answers read-only sales questions. Revenue is the sum of
// completed payments by completed_at.
type ReportService struct {
	db   *gorm.DB
	deps Deps
}

func NewReportService(db *gorm.DB, deps Deps) *ReportService {
	return &ReportService{db: db, deps: deps.withDefaults()}
}

func (s *ReportService) Now() time.Time { return s.deps.Now() }

func (s *ReportService) SalesReport(ctx context.Context, r DateRange) (*SalesReport, error) {
	db := s.db.WithContext(ctx)
	report := &SalesReport{
		Range:     r.Preset,
		StartDate: r.Start.Format("2006-01-02"),
		EndDate:   r.End.AddDate(0, 0, -1).Format("2006-01-02"),
	}

	var err error
	if report.TotalRevenue, err = s.revenue(db, r); err != nil {
		return nil, err
	}
	prev := r.Previous()
	if report.PreviousRevenue, err = s.revenue(db, prev); err != nil {
		return nil, err
	}
	report.RevenueChange = percentageChange(report.TotalRevenue.InexactFloat64(), report.PreviousRevenue.InexactFloat64())

	if report.TotalOrders, err = s.orderCount(db, r); err != nil {
		return nil, err
	}
	if report.PreviousOrders, err = s.orderCount(db, prev); err != nil {
		return nil, err
	}
	report.OrdersChange = percentageChange(float64(report.TotalOrders), float64(report.PreviousOrders))

	if report.AverageOrderValue, err = s.averageOrderValue(db, r); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Order{}).
		Where("customer_id IS NOT NULL AND created_at >= ? AND created_at < ?", r.Start, r.End).
		Distinct("customer_id").
		Count(&report.TotalCustomers).Error; err != nil {
		return nil, err
	}

	if report.OrdersByStatus, err = s.ordersByStatus(db, r); err != nil {
		return nil, err
	}
	if report.DailySales, err = s.dailySales(db, r); err != nil {
		return nil, err
	}
	if report.PaymentMethods, err = s.paymentMethods(db, r, report.TotalRevenue); err != nil {
		return nil, err
	}
	if report.CategorySales, err = s.categorySales(db, r); err != nil {
		return nil, err
	}
	if report.TopItems, err = s.topItems(db, r, 10); err != nil {
		return nil, err
	}
	return report, nil
}

// Dashboard summarises today and the current floor.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.deps.Now()
	today, _ := ResolveRange(RangeToday, "", "", now)
	yesterday, _ := ResolveRange(RangeYesterday, "", "", now)

	d := &Dashboard{TablesByStatus: map[string]int64{}}
	var err error
	if d.TodayRevenue, err = s.revenue(db, today); err != nil {
		return nil, err
	}
	prev, err := s.revenue(db, yesterday)
	if err != nil {
		return nil, err
	}
	d.RevenueChange = percentageChange(d.TodayRevenue.InexactFloat64(), prev.InexactFloat64())

	if err := db.Model(&models.Order{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.StatusCompleted, today.Start, today.End).
		Count(&d.TodayOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Where("status IN ?", models.OpenStatuses).Count(&d.ActiveOrders).Error; err != nil {
		return nil, err
	}

	var tables []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Table{}).
		Select("status, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("status").
		Scan(&tables).Error; err != nil {
		return nil, err
	}
	for _, t := range tables {
		d.TablesByStatus[t.Status] = t.Count
	}

	if err := db.Preload("Table").Order("created_at DESC").Limit(5).Find(&d.RecentOrders).Error; err != nil {
		return nil, err
	}
	if d.TopItemsToday, err = s.topItems(db, today, 5); err != nil {
		return nil, err
	}
	return d, nil
}

// SnapshotDaily stores the totals of the day containing day, replacing an
// earlier snapshot of the same day.
func (s *ReportService) SnapshotDaily(ctx context.Context, day time.Time) (*models.SalesReport, error) {
	start := utils.BeginningOfDay(day)
	r := DateRange{Preset: "daily", Start: start, End: start.AddDate(0, 0, 1)}

	var snapshot models.SalesReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		revenue, err := s.revenue(tx, r)
		if err != nil {
			return err
		}
		orders, err := s.orderCount(tx, r)
		if err != nil {
			return err
		}
		var customers int64
		if err := tx.Model(&models.Order{}).
			Where("customer_id IS NOT NULL AND created_at >= ? AND created_at < ?", r.Start, r.End).
			Distinct("customer_id").
			Count(&customers).Error; err != nil {
			return err
		}
		avg, err := s.averageOrderValue(tx, r)
		if err != nil {
			return err
		}

		if err := tx.Where("period = ? AND start_date = ?", "daily", r.Start).Delete(&models.SalesReport{}).Error; err != nil {
			return err
		}
		snapshot = models.SalesReport{
			Name:              "Daily sales " + r.Start.Format("2006-01-02"),
			Period:            "daily",
			StartDate:         r.Start,
			EndDate:           r.End,
			TotalSales:        revenue,
			TotalOrders:       orders,
			AverageOrderValue: avg,
			TotalCustomers:    customers,
			CreatedAt:         s.deps.Now(),
		}
		return tx.Create(&snapshot).Error
	})
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Info("daily sales snapshot stored", "day", r.Start.Format("2006-01-02"), "revenue", snapshot.TotalSales.StringFixed(2), "orders", snapshot.TotalOrders)
	return &snapshot, nil
}

func (s *ReportService) ListSnapshots(ctx context.Context, limit int) ([]models.SalesReport, error) {
	if limit <= 0 || limit > maxReportDays {
		limit = 30
	}
	var reports []models.SalesReport
	err := s.db.WithContext(ctx).Order("start_date DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

func (s *ReportService) revenue(db *gorm.DB, r DateRange) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.PaymentCompleted, r.Start, r.End).
		Scan(&row).Error
	return row.Total.Round(2), err
}

// averageOrderValue averages the totals of the orders orderCount counts.
func (s *ReportService) averageOrderValue(db *gorm.DB, r DateRange) (decimal.Decimal, error) {
	var row struct{ Average decimal.Decimal }
	err := db.Model(&models.Order{}).
		Select("COALESCE(AVG(total), 0) AS average").
		Where("status IN ? AND created_at >= ? AND created_at < ?", countedStatuses, r.Start, r.End).
		Scan(&row).Error
	return row.Average.Round(2), err
}

func (s *ReportService) orderCount(db *gorm.DB, r DateRange) (int64, error) {
	var n int64
	err := db.Model(&models.Order{}).
		Where("status IN ? AND created_at >= ? AND created_at < ?", countedStatuses, r.Start, r.End).
		Count(&n).Error
	return n, err
}

func (s *ReportService) ordersByStatus(db *gorm.DB, r DateRange) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", r.Start, r.End).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// dailySales buckets in Go so day boundaries follow the range's location
// on every database.
func (s *ReportService) dailySales(db *gorm.DB, r DateRange) ([]DailySales, error) {
	var payments []models.Payment
	if err := db.Select("amount", "completed_at").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.PaymentCompleted, r.Start, r.End).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := db.Select("created_at").
		Where("status IN ? AND created_at >= ? AND created_at < ?", countedStatuses, r.Start, r.End).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	days := make([]DailySales, 0, r.Days())
	index := make(map[string]int, r.Days())
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		index[key] = len(days)
		days = append(days, DailySales{Date: key, Revenue: decimal.Zero})
	}

	loc := r.Start.Location()
	for _, p := range payments {
		if p.CompletedAt == nil {
			continue
		}
		if i, ok := index[p.CompletedAt.In(loc).Format("2006-01-02")]; ok {
			days[i].Revenue = days[i].Revenue.Add(p.Amount)
		}
	}
	for _, o := range orders {
		if i, ok := index[o.CreatedAt.In(loc).Format("2006-01-02")]; ok {
			days[i].Orders++
		}
	}
	return days, nil
}

func (s *ReportService) paymentMethods(db *gorm.DB, r DateRange, revenue decimal.Decimal) ([]PaymentMethodSummary, error) {
	var rows []PaymentMethodSummary
	if err := db.Model(&models.Payment{}).
		Select("payment_method AS method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.PaymentCompleted, r.Start, r.End).
		Group("payment_method").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
		rows[i].Percentage = share(rows[i].Total, revenue)
	}
	return rows, nil
}

func (s *ReportService) categorySales(db *gorm.DB, r DateRange) ([]CategorySummary, error) {
	var rows []CategorySummary
	if err := db.Table("order_items").
		Select("categories.name AS name, SUM(order_items.quantity) AS items_sold, COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Where("orders.status IN ? AND orders.created_at >= ? AND orders.created_at < ?", countedStatuses, r.Start, r.End).
		Group("categories.name").
		Order("revenue DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	total := decimal.Zero
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
		total = total.Add(rows[i].Revenue)
	}
	for i := range rows {
		rows[i].Percentage = share(rows[i].Revenue, total)
	}
	return rows, nil
}

func (s *ReportService) topItems(db *gorm.DB, r DateRange, limit int) ([]ItemSummary, error) {
	var rows []ItemSummary
	err := db.Table("order_items").
		Select("order_items.name AS name, SUM(order_items.quantity) AS quantity, COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ? AND orders.created_at >= ? AND orders.created_at < ?", countedStatuses, r.Start, r.End).
		Group("order_items.name").
		Order("quantity DESC, name").
		Limit(limit).
		Scan(&rows).Error
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}

// percentageChange is the change from previous to current in percent,
// rounded to one decimal. From zero it is 100 for any growth.
func percentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

func share(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}
