package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bahikhata-erp/bahikhata/internal/invoice"
)

var (
	ErrInvalidCron  = errors.New("recurring: invalid cron expression")
	ErrTemplateIdle = errors.New("recurring: template is inactive")
)

// InvoicePoster materializes concrete invoices; satisfied by the
// invoice service.
type InvoicePoster interface {
	Create(ctx context.Context, in invoice.CreateInput) (invoice.Invoice, error)
}

// Service manages templates and fires the due ones. Deciding when a
// template is due is the scheduler's job; this service only posts.
type Service struct {
	repo   Repository
	poster InvoicePoster
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, poster InvoicePoster, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Template, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, templateID int64) (Template, error) {
	return s.repo.Get(ctx, companyID, templateID)
}

func (s *Service) Create(ctx context.Context, t *Template) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Update(ctx context.Context, t *Template) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, companyID, templateID int64) error {
	return s.repo.Delete(ctx, companyID, templateID)
}

// Fire materializes one invoice from the template dated at its next
// invoice date, then advances the schedule. Past invoices are never
// touched.
func (s *Service) Fire(ctx context.Context, companyID, templateID int64) (invoice.Invoice, error) {
	t, err := s.repo.Get(ctx, companyID, templateID)
	if err != nil {
		return invoice.Invoice{}, err
	}
	return s.fire(ctx, t)
}

// FireDue fires every active template whose next invoice date has
// passed. A failing template is logged and skipped so one bad template
// cannot starve the rest; the count of fired invoices is returned.
func (s *Service) FireDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	fired := 0
	for _, t := range due {
		full, err := s.repo.Get(ctx, t.CompanyID, t.ID)
		if err != nil {
			s.logger.Error("load due template failed", "template_id", t.ID, slog.Any("error", err))
			continue
		}
		if _, err := s.fire(ctx, full); err != nil {
			s.logger.Error("fire template failed", "template_id", t.ID, slog.Any("error", err))
			continue
		}
		fired++
	}
	return fired, nil
}

func (s *Service) fire(ctx context.Context, t Template) (invoice.Invoice, error) {
	if !t.IsActive {
		return invoice.Invoice{}, ErrTemplateIdle
	}
	schedule, err := cron.ParseStandard(t.CronExpression)
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}
	date := t.NextInvoiceDate
	items := make([]invoice.ItemInput, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, invoice.ItemInput{
			ItemID:          it.ItemID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			Rate:            it.Rate,
			TaxRatePercent:  it.TaxRatePercent,
			DiscountPercent: it.DiscountPercent,
		})
	}
	inv, err := s.poster.Create(ctx, invoice.CreateInput{
		CompanyID:       t.CompanyID,
		Type:            invoice.TypeSales,
		InvoiceNumber:   fmt.Sprintf("%s-%s", t.ProfileName, date.Format("20060102")),
		Date:            date,
		PartyLedgerID:   t.PartyLedgerID,
		SalesLedgerID:   t.SalesLedgerID,
		DiscountPercent: t.DiscountPercent,
		Narration:       fmt.Sprintf("Recurring invoice from profile %s", t.ProfileName),
		Items:           items,
	})
	if err != nil {
		return invoice.Invoice{}, err
	}
	next := schedule.Next(date)
	if err := s.repo.MarkFired(ctx, t.ID, date, next); err != nil {
		return invoice.Invoice{}, err
	}
	s.logger.Info("recurring template fired", "template_id", t.ID, "invoice_id", inv.ID,
		"invoice_date", date, "next_invoice_date", next)
	return inv, nil
}

func validateTemplate(t *Template) error {
	if t.ProfileName == "" || t.CompanyID == 0 || t.PartyLedgerID == 0 || t.SalesLedgerID == 0 || len(t.Items) == 0 {
		return errors.New("recurring: profile_name, company_id, ledgers and items are required")
	}
	if _, err := cron.ParseStandard(t.CronExpression); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}
	return nil
}
