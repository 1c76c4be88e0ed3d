package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
	"tourdesk-service/internal/domain/repository"
	"tourdesk-service/pkg/apperr"
	"tourdesk-service/pkg/identifier"
	"tourdesk-service/pkg/logger"
	"tourdesk-service/pkg/metrics"
	"tourdesk-service/pkg/utils"
)

// Row is one flat record of a bulk transfer, keyed by column name. Tabular
// framing (CSV quoting, headers) belongs to the caller.
type Row map[string]string

// Column contracts shared by import and export, in output order.
var (
	BookingColumns = []string{
		"name", "date_from", "date_to", "country",
		"pax", "ladies", "men", "children", "teens",
		"agent_name", "consultant", "notes",
	}
	AgentColumns = []string{
		"name", "company", "email", "phone", "country", "address", "notes",
	}
)

// Transfer drives row-isolated imports and flattened exports. Each input row
// either fully commits as one document or contributes one failure entry;
// sibling rows are never rolled back.
type Transfer struct {
	bookingRepo repository.BookingRepository
	agentRepo   repository.AgentRepository
	countryRepo repository.CountryRepository
	resolver    *Resolver
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewTransfer creates a new transfer pipeline. countryRepo and metrics may
// be nil; without a country directory names pass through unchanged.
func NewTransfer(
	bookingRepo repository.BookingRepository,
	agentRepo repository.AgentRepository,
	countryRepo repository.CountryRepository,
	resolver *Resolver,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Transfer {
	return &Transfer{
		bookingRepo: bookingRepo,
		agentRepo:   agentRepo,
		countryRepo: countryRepo,
		resolver:    resolver,
		metrics:     metrics,
		logger:      logger,
	}
}

// normalizeCountry swaps a country name for its canonical directory form
// when a directory is configured. Unknown names pass through unchanged.
func (t *Transfer) normalizeCountry(ctx context.Context, name string) string {
	if t.countryRepo == nil || name == "" {
		return name
	}
	country, err := t.countryRepo.GetByName(ctx, name)
	if err != nil {
		t.logger.Debug("Country not in directory", "name", name)
		return name
	}
	return country.Name
}

func parseCount(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperr.Validationf("%s: invalid count %q", field, value)
	}
	return n, nil
}

// ImportBookings inserts one booking per row under the given owner. Rows are
// processed in input order and independently; succeeded ids preserve row
// order. The owner must be a well-formed identifier or the whole call fails
// before any row is touched.
func (t *Transfer) ImportBookings(ctx context.Context, ownerID string, rows []Row) (*entity.ImportResult, error) {
	owner, err := identifier.Decode(ownerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &entity.ImportResult{
		BatchID:   uuid.NewString(),
		Succeeded: []string{},
		Failed:    []entity.RowError{},
	}
	log := t.logger.With("batchId", result.BatchID, "entity", "bookings")
	log.Info("Starting import", "rows", len(rows))

	for i, row := range rows {
		booking, err := t.mapBookingRow(ctx, owner, row)
		if err == nil {
			booking, err = t.bookingRepo.Create(ctx, booking)
		}
		if err != nil {
			result.Failed = append(result.Failed, entity.RowError{Row: i, Reason: err.Error()})
			t.countRow("bookings", "failure")
			continue
		}
		result.Succeeded = append(result.Succeeded, identifier.Encode(booking.ID))
		t.countRow("bookings", "success")
	}

	if t.metrics != nil {
		t.metrics.ImportDuration.Observe(time.Since(start).Seconds())
	}
	log.Info("Import finished", "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

func (t *Transfer) mapBookingRow(ctx context.Context, owner primitive.ObjectID, row Row) (*entity.Booking, error) {
	dateFrom, err := utils.ParseDate("date_from", row["date_from"])
	if err != nil {
		return nil, err
	}
	dateTo, err := utils.ParseDate("date_to", row["date_to"])
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, 5)
	for _, field := range []string{"pax", "ladies", "men", "children", "teens"} {
		n, err := parseCount(field, row[field])
		if err != nil {
			return nil, err
		}
		counts[field] = n
	}

	booking := &entity.Booking{
		Name:       row["name"],
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Country:    t.normalizeCountry(ctx, row["country"]),
		Pax:        counts["pax"],
		Ladies:     counts["ladies"],
		Men:        counts["men"],
		Children:   counts["children"],
		Teens:      counts["teens"],
		Consultant: row["consultant"],
		Notes:      row["notes"],
		UserID:     owner,
	}

	if name := row["agent_name"]; name != "" {
		agent, err := t.agentRepo.FindByName(ctx, name)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validationf("agent_name: unknown agent %q", name)
		}
		if err != nil {
			return nil, err
		}
		booking.AgentID = &agent.ID
	}

	return booking, nil
}

// ExportBookings runs a filtered query and flattens each booking, with its
// agent summary inlined, into the import column contract.
func (t *Transfer) ExportBookings(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]Row, error) {
	bookings, err := t.bookingRepo.FindMany(ctx, f, s, p)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		agentName := ""
		if b.AgentID != nil {
			summary, err := t.resolver.AgentSummary(ctx, *b.AgentID)
			if err != nil {
				return nil, err
			}
			if summary.Resolved {
				agentName = summary.Name
			}
		}
		rows = append(rows, Row{
			"name":       b.Name,
			"date_from":  utils.FormatDate(b.DateFrom),
			"date_to":    utils.FormatDate(b.DateTo),
			"country":    b.Country,
			"pax":        strconv.Itoa(b.Pax),
			"ladies":     strconv.Itoa(b.Ladies),
			"men":        strconv.Itoa(b.Men),
			"children":   strconv.Itoa(b.Children),
			"teens":      strconv.Itoa(b.Teens),
			"agent_name": agentName,
			"consultant": b.Consultant,
			"notes":      b.Notes,
		})
	}
	return rows, nil
}

// ImportAgents inserts one agent per row. ownerID may be empty for global
// agents; when set it must be well-formed.
func (t *Transfer) ImportAgents(ctx context.Context, ownerID string, rows []Row) (*entity.ImportResult, error) {
	var owner *primitive.ObjectID
	if ownerID != "" {
		oid, err := identifier.Decode(ownerID)
		if err != nil {
			return nil, err
		}
		owner = &oid
	}

	start := time.Now()
	result := &entity.ImportResult{
		BatchID:   uuid.NewString(),
		Succeeded: []string{},
		Failed:    []entity.RowError{},
	}

	log := t.logger.With("batchId", result.BatchID, "entity", "agents")
	log.Info("Starting import", "rows", len(rows))

	for i, row := range rows {
		agent := &entity.Agent{
			Name:    row["name"],
			Company: row["company"],
			Email:   row["email"],
			Phone:   row["phone"],
			Country: t.normalizeCountry(ctx, row["country"]),
			Address: row["address"],
			Notes:   row["notes"],
		}
		agent.UserID = owner

		agent, err := t.agentRepo.Create(ctx, agent)
		if err != nil {
			result.Failed = append(result.Failed, entity.RowError{Row: i, Reason: err.Error()})
			t.countRow("agents", "failure")
			continue
		}
		result.Succeeded = append(result.Succeeded, identifier.Encode(agent.ID))
		t.countRow("agents", "success")
	}

	if t.metrics != nil {
		t.metrics.ImportDuration.Observe(time.Since(start).Seconds())
	}
	log.Info("Import finished", "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

// ExportAgents runs a filtered query and flattens each agent into the agent
// import column contract.
func (t *Transfer) ExportAgents(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]Row, error) {
	agents, err := t.agentRepo.FindMany(ctx, f, s, p)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, Row{
			"name":    a.Name,
			"company": a.Company,
			"email":   a.Email,
			"phone":   a.Phone,
			"country": a.Country,
			"address": a.Address,
			"notes":   a.Notes,
		})
	}
	return rows, nil
}

func (t *Transfer) countRow(entityName, outcome string) {
	if t.metrics == nil {
		return
	}
	t.metrics.ImportRows.WithLabelValues(entityName, outcome).Inc()
	if outcome == "success" {
		t.metrics.DocumentsWritten.WithLabelValues(entityName, "insert").Inc()
	}
}
