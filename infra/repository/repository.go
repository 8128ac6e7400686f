// Package repository implements the persistence contracts over GORM and
// PostgreSQL. Every method maps store errors to domain errors at the
// boundary; callers never see a gorm error.
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
)

const insertBatchSize = 500

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository builds the staging repository for
// authorization records.
func NewTransactionRepository(db *gorm.DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) BatchInsert(ctx context.Context, records []dto.StagedTransaction) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]StagedTransaction, len(records))
	for i, d := range records {
		if d.Status == "" {
			d.Status = domain.StatusPending
		}
		rows[i] = stagedTransactionToModel(d)
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error)
}

func (r *transactionRepository) ListByStatus(ctx context.Context, family domain.Family, status domain.Status) ([]dto.StagedTransaction, error) {
	var rows []StagedTransaction
	err := r.db.WithContext(ctx).
		Where("family = ? AND status = ?", string(family), string(status)).
		Order("transaction_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]dto.StagedTransaction, len(rows))
	for i, m := range rows {
		out[i] = stagedTransactionToDTO(m)
	}
	return out, nil
}

func (r *transactionRepository) Get(ctx context.Context, id int64) (*dto.StagedTransaction, error) {
	var row StagedTransaction
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	d := stagedTransactionToDTO(row)
	return &d, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, ids []int64, status domain.Status) error {
	if len(ids) == 0 {
		return nil
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).
		Model(&StagedTransaction{}).
		Where("id IN ?", ids).
		Update("status", string(status)).Error)
}

func (r *transactionRepository) SetEnrichment(ctx context.Context, coupon, customerName, documentType string) error {
	return MapGormErrorToDomain(r.db.WithContext(ctx).
		Model(&StagedTransaction{}).
		Where("coupon = ?", coupon).
		Updates(map[string]any{"customer_name": customerName, "document_type": documentType}).Error)
}

func (r *transactionRepository) SendableByDate(ctx context.Context, family domain.Family, date string) ([]dto.StagedTransaction, error) {
	var rows []StagedTransaction
	err := r.db.WithContext(ctx).
		Where("family = ? AND transaction_date = ? AND status IN ?",
			string(family), date, []string{string(domain.StatusFound), string(domain.StatusReprocess)}).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]dto.StagedTransaction, len(rows))
	for i, m := range rows {
		out[i] = stagedTransactionToDTO(m)
	}
	return out, nil
}

func (r *transactionRepository) UnresolvedDatesBefore(ctx context.Context, family domain.Family, date string) ([]string, error) {
	// RRMMDD orders chronologically under plain string comparison.
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&StagedTransaction{}).
		Distinct("transaction_date").
		Where("family = ? AND transaction_date < ? AND status IN ?",
			string(family), date, []string{
				string(domain.StatusPending), string(domain.StatusFound),
				string(domain.StatusNotFound), string(domain.StatusReprocess),
			}).
		Order("transaction_date DESC").
		Pluck("transaction_date", &dates).Error
	return dates, MapGormErrorToDomain(err)
}

func (r *transactionRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).
		Delete(&StagedTransaction{}, "id IN ?", ids).Error)
}

func (r *transactionRepository) StatusSummary(ctx context.Context, family domain.Family) ([]dto.StatusCount, error) {
	var rows []struct {
		TransactionDate string
		Status          string
		N               int64
	}
	err := r.db.WithContext(ctx).
		Model(&StagedTransaction{}).
		Select("transaction_date, status, count(*) as n").
		Where("family = ?", string(family)).
		Group("transaction_date").Group("status").
		Order("transaction_date, status").
		Scan(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]dto.StatusCount, len(rows))
	for i, row := range rows {
		out[i] = dto.StatusCount{Date: row.TransactionDate, Status: domain.Status(row.Status), Count: row.N}
	}
	return out, nil
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository builds the repository over the per-family
// historical transaction tables.
func NewHistoryRepository(db *gorm.DB) *historyRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) BatchInsert(ctx context.Context, records []dto.HistoricalTransaction) error {
	byFamily := map[domain.Family][]HistoricalTransaction{}
	for _, d := range records {
		byFamily[d.Family] = append(byFamily[d.Family], historicalToModel(d))
	}
	for family, rows := range byFamily {
		err := r.db.WithContext(ctx).Table(historyTable(family)).CreateInBatches(rows, insertBatchSize).Error
		if err != nil {
			return MapGormErrorToDomain(err)
		}
	}
	return nil
}

func (r *historyRepository) Candidates(ctx context.Context, family domain.Family, coupons []string) ([]dto.HistoricalTransaction, error) {
	if len(coupons) == 0 {
		return nil, nil
	}
	var rows []HistoricalTransaction
	err := r.db.WithContext(ctx).
		Table(historyTable(family)).
		Where("coupon IN ?", coupons).
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]dto.HistoricalTransaction, len(rows))
	for i, m := range rows {
		out[i] = historicalToDTO(m, family)
	}
	return out, nil
}

type liquidationRepository struct {
	db *gorm.DB
}

// NewLiquidationRepository builds the settlement staging repository.
func NewLiquidationRepository(db *gorm.DB) *liquidationRepository {
	return &liquidationRepository{db: db}
}

func (r *liquidationRepository) BatchInsert(ctx context.Context, records []dto.StagedLiquidation) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]StagedLiquidation, len(records))
	for i, d := range records {
		rows[i] = stagedLiquidationToModel(d)
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error)
}

func (r *liquidationRepository) ListByFamily(ctx context.Context, family domain.Family, sourceFile string) ([]dto.StagedLiquidation, error) {
	q := r.db.WithContext(ctx).Where("family = ?", string(family))
	if sourceFile != "" {
		q = q.Where("source_file = ?", sourceFile)
	}
	var rows []StagedLiquidation
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]dto.StagedLiquidation, len(rows))
	for i, m := range rows {
		out[i] = stagedLiquidationToDTO(m)
	}
	return out, nil
}

func (r *liquidationRepository) MoveToHistory(ctx context.Context, ids []int64, actor string) error {
	if len(ids) == 0 {
		return nil
	}
	var rows []StagedLiquidation
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	hist := make([]HistoricalLiquidation, len(rows))
	for i, m := range rows {
		hist[i] = HistoricalLiquidation{
			Family:            m.Family,
			CommerceNumber:    m.CommerceNumber,
			SaleDate:          m.SaleDate,
			PaymentDate:       m.PaymentDate,
			UniqueNumber:      m.UniqueNumber,
			AuthorizationCode: m.AuthorizationCode,
			Amount:            m.Amount,
			Installment:       m.Installment,
			TotalInstallments: m.TotalInstallments,
			SourceFile:        m.SourceFile,
			ValidatedBy:       actor,
			ProcessedAt:       now,
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(hist, insertBatchSize).Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).Delete(&StagedLiquidation{}, "id IN ?", ids).Error)
}

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository builds the coupon master repository.
func NewCouponRepository(db *gorm.DB) *couponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) InsertIfAbsent(ctx context.Context, resolutions []dto.CouponResolution) (int, error) {
	if len(resolutions) == 0 {
		return 0, nil
	}
	rows := make([]CouponResolution, len(resolutions))
	for i, d := range resolutions {
		rows[i] = CouponResolution{
			Coupon:          d.Coupon,
			TransactionDate: d.TransactionDate,
			CustomerID:      d.CustomerID,
			DisplayName:     d.DisplayName,
			Enrichment:      d.Enrichment,
			CreatedAt:       d.CreatedAt,
		}
	}
	// First writer wins on the (coupon, transaction_date) key.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, insertBatchSize)
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *couponRepository) ListUnenriched(ctx context.Context, limit int) ([]dto.CouponResolution, error) {
	q := r.db.WithContext(ctx).Where("enrichment = ''").Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []CouponResolution
	if err := q.Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]dto.CouponResolution, len(rows))
	for i, m := range rows {
		out[i] = dto.CouponResolution{
			Coupon:          m.Coupon,
			TransactionDate: m.TransactionDate,
			CustomerID:      m.CustomerID,
			DisplayName:     m.DisplayName,
			Enrichment:      m.Enrichment,
			CreatedAt:       m.CreatedAt,
		}
	}
	return out, nil
}

func (r *couponRepository) SetEnrichment(ctx context.Context, coupon, date, displayName, payload string) error {
	return MapGormErrorToDomain(r.db.WithContext(ctx).
		Model(&CouponResolution{}).
		Where("coupon = ? AND transaction_date = ? AND enrichment = ''", coupon, date).
		Updates(map[string]any{"display_name": displayName, "enrichment": payload}).Error)
}

type ingestLogRepository struct {
	db *gorm.DB
}

// NewIngestLogRepository builds the ingestion journal repository.
func NewIngestLogRepository(db *gorm.DB) *ingestLogRepository {
	return &ingestLogRepository{db: db}
}

func (r *ingestLogRepository) Processed(ctx context.Context, logicalName string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&IngestLogEntry{}).
		Where("logical_name = ? AND state = ?", logicalName, dto.IngestProcessed).
		Count(&n).Error
	return n > 0, MapGormErrorToDomain(err)
}

func (r *ingestLogRepository) Record(ctx context.Context, entry dto.IngestLogEntry) error {
	row := IngestLogEntry{
		RunID:       entry.RunID,
		LogicalName: entry.LogicalName,
		FileType:    string(entry.FileType),
		State:       entry.State,
		Inserted:    entry.Inserted,
		Detail:      entry.Detail,
		LoadedAt:    entry.LoadedAt,
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).Create(&row).Error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository builds the accounting close journal repository.
func NewAuditRepository(db *gorm.DB) *auditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry dto.AuditLogEntry) error {
	row := AuditLogEntry{
		Actor:      entry.Actor,
		Family:     string(entry.Family),
		BatchDate:  entry.BatchDate,
		Records:    entry.Records,
		DailyTotal: entry.DailyTotal,
		SentAt:     entry.SentAt,
	}
	return MapGormErrorToDomain(r.db.WithContext(ctx).Create(&row).Error)
}

func (r *auditRepository) DailyTotal(ctx context.Context, family domain.Family, batchDate string) (int64, error) {
	var row AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("family = ? AND batch_date = ?", string(family), batchDate).
		Order("sent_at DESC").
		First(&row).Error
	if err != nil {
		if MapGormErrorToDomain(err) == domain.ErrNotFound {
			return 0, nil
		}
		return 0, MapGormErrorToDomain(err)
	}
	return row.DailyTotal, nil
}
