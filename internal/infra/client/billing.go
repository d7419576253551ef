package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const billingService = "billing"

// BillingClient calls the building-management backend (billing and buildings APIs).
// It implements port.BillingBackend.
type BillingClient struct {
	rest *restClient
}

// NewBillingClient creates a BillingClient. The breaker should be built with
// BreakerSuccess as its success predicate.
func NewBillingClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *BillingClient {
	return &BillingClient{rest: &restClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		service:    billingService,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}}
}

// ListTransactions fetches a building's ledger. Zero bounds are omitted.
func (c *BillingClient) ListTransactions(ctx context.Context, buildingID string, from, to time.Time) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", buildingID))

	q := url.Values{}
	if buildingID != "" {
		q.Set("building_id", buildingID)
	}
	if !from.IsZero() {
		q.Set("date_from", from.Format(time.DateOnly))
	}
	if !to.IsZero() {
		q.Set("date_to", to.Format(time.DateOnly))
	}

	body, err := c.rest.execute(ctx, request{method: http.MethodGet, path: "/billing/transactions/", query: q, idempotent: true})
	if err != nil {
		return nil, err
	}
	txs, err := decodeList[domain.Transaction](body, "transactions")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding transactions: %w", err)}
	}
	span.SetAttributes(attribute.Int("transactions.count", len(txs)))
	return txs, nil
}

// GetExpenseAllocation fetches the per-unit split of a shared bill.
func (c *BillingClient) GetExpenseAllocation(ctx context.Context, sharedBillID string) (*domain.Allocation, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.GetExpenseAllocation")
	defer span.End()
	span.SetAttributes(attribute.String("shared_bill.id", sharedBillID))

	q := url.Values{"shared_bill_id": {sharedBillID}}
	body, err := c.rest.execute(ctx, request{method: http.MethodGet, path: "/billing/get-expense-allocation/", query: q, idempotent: true})
	if err != nil {
		return nil, err
	}
	var alloc domain.Allocation
	if err := json.Unmarshal(body, &alloc); err != nil {
		return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding allocation: %w", err)}
	}
	return &alloc, nil
}

// GetBuildingDebtCredit fetches the building-wide debt/credit summary.
// Residents without permission receive a 403 *domain.ErrExternalService.
func (c *BillingClient) GetBuildingDebtCredit(ctx context.Context, buildingID string) (*domain.DebtCreditResult, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.GetBuildingDebtCredit")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", buildingID))

	q := url.Values{"building_id": {buildingID}}
	body, err := c.rest.execute(ctx, request{method: http.MethodGet, path: "/billing/building-units-debt-credit-summary/", query: q, idempotent: true})
	if err != nil {
		return nil, err
	}
	var result domain.DebtCreditResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding debt/credit: %w", err)}
	}
	return &result, nil
}

// GetUnitDebt fetches a single unit's debt summary.
func (c *BillingClient) GetUnitDebt(ctx context.Context, unitID string) (*domain.UnitDebt, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.GetUnitDebt")
	defer span.End()
	span.SetAttributes(attribute.String("unit.id", unitID))

	path := fmt.Sprintf("/billing/unit-debt/%s/", url.PathEscape(unitID))
	body, err := c.rest.execute(ctx, request{method: http.MethodGet, path: path, idempotent: true})
	if err != nil {
		return nil, err
	}
	var debt domain.UnitDebt
	if err := json.Unmarshal(body, &debt); err != nil {
		return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding unit debt: %w", err)}
	}
	return &debt, nil
}

// ListBuildingUnits fetches the units of a building.
func (c *BillingClient) ListBuildingUnits(ctx context.Context, buildingID string) ([]domain.BuildingUnit, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.ListBuildingUnits")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", buildingID))

	path := fmt.Sprintf("/buildings/%s/units/", url.PathEscape(buildingID))
	body, err := c.rest.execute(ctx, request{method: http.MethodGet, path: path, idempotent: true})
	if err != nil {
		return nil, err
	}
	units, err := decodeList[domain.BuildingUnit](body, "units")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding units: %w", err)}
	}
	return units, nil
}

// GetVisibilitySettings reads whether residents may see the debt/credit view.
func (c *BillingClient) GetVisibilitySettings(ctx context.Context, buildingID string) (*domain.VisibilitySettings, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.GetVisibilitySettings")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", buildingID))

	q := url.Values{"building_id": {buildingID}}
	body, err := c.rest.execute(ctx, request{method: http.MethodGet, path: "/billing/visibility-settings/", query: q, idempotent: true})
	if err != nil {
		return nil, err
	}
	return decodeVisibility(body, buildingID)
}

// ToggleDebtCreditVisibility sets whether residents may see the debt/credit view.
func (c *BillingClient) ToggleDebtCreditVisibility(ctx context.Context, buildingID string, show bool) (*domain.VisibilitySettings, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.ToggleDebtCreditVisibility")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", buildingID), attribute.Bool("show", show))

	payload, err := jsonBody(map[string]any{"building_id": buildingID, "show_to_residents": show})
	if err != nil {
		return nil, err
	}
	body, err := c.rest.execute(ctx, request{
		method:      http.MethodPost,
		path:        "/billing/toggle-debt-credit-visibility/",
		body:        payload,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	settings, err := decodeVisibility(body, buildingID)
	if err != nil {
		return nil, err
	}
	settings.ShowToResidents = show
	return settings, nil
}

func decodeVisibility(body []byte, buildingID string) (*domain.VisibilitySettings, error) {
	settings := domain.VisibilitySettings{BuildingID: domain.FlexString(buildingID)}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &settings); err != nil {
			return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding visibility settings: %w", err)}
		}
	}
	if settings.BuildingID == "" {
		settings.BuildingID = domain.FlexString(buildingID)
	}
	return &settings, nil
}

// PayBill pays an invoice or a unit's share of a shared bill.
// The idempotency key, when set, is forwarded as the Idempotency-Key header.
func (c *BillingClient) PayBill(ctx context.Context, req *domain.PayBillRequest) (*domain.PayBillResponse, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.PayBill")
	defer span.End()
	span.SetAttributes(attribute.String("bill.id", req.BillID.String()))

	payload, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	r := request{
		method:      http.MethodPost,
		path:        "/billing/pay-bill/",
		body:        payload,
		contentType: "application/json",
	}
	if req.IdempotencyKey != "" {
		r.header = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}
	body, err := c.rest.execute(ctx, r)
	if err != nil {
		return nil, err
	}

	resp := domain.PayBillResponse{Success: true}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding pay-bill response: %w", err)}
		}
	}
	return &resp, nil
}

// RegisterExpense creates a shared expense (multipart, with optional attachment).
func (c *BillingClient) RegisterExpense(ctx context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.RegisterExpense")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", req.BuildingID), attribute.String("expense.type", req.ExpenseType))

	return c.sendExpense(ctx, http.MethodPost, "/billing/register-expense/", req)
}

// UpdateExpense edits an existing shared expense.
func (c *BillingClient) UpdateExpense(ctx context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.UpdateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("shared_bill.id", req.SharedBillID))

	return c.sendExpense(ctx, http.MethodPut, "/billing/update-expense/", req)
}

// DeleteExpense removes a shared expense.
func (c *BillingClient) DeleteExpense(ctx context.Context, sharedBillID string) (*domain.ExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "BillingClient.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("shared_bill.id", sharedBillID))

	q := url.Values{"shared_bill_id": {sharedBillID}}
	body, err := c.rest.execute(ctx, request{method: http.MethodDelete, path: "/billing/delete-expense/", query: q})
	if err != nil {
		return nil, err
	}
	return decodeExpenseResponse(body, sharedBillID)
}

func (c *BillingClient) sendExpense(ctx context.Context, method, path string, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	form, contentType, err := expenseForm(req)
	if err != nil {
		return nil, err
	}
	body, err := c.rest.execute(ctx, request{method: method, path: path, body: form, contentType: contentType})
	if err != nil {
		return nil, err
	}
	return decodeExpenseResponse(body, req.SharedBillID)
}

func decodeExpenseResponse(body []byte, sharedBillID string) (*domain.ExpenseResponse, error) {
	resp := domain.ExpenseResponse{Success: true}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &domain.ErrExternalService{Service: billingService, Err: fmt.Errorf("decoding expense response: %w", err)}
		}
	}
	if resp.SharedBillID == "" {
		resp.SharedBillID = domain.FlexString(sharedBillID)
	}
	return &resp, nil
}

// expenseForm encodes an expense as multipart/form-data. Empty fields are
// omitted; specific_units and custom_unit_costs travel as JSON strings.
func expenseForm(req *domain.ExpenseRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"shared_bill_id", req.SharedBillID},
		{"building_id", req.BuildingID},
		{"expense_type", req.ExpenseType},
		{"expense_name", req.ExpenseName},
		{"total_amount", req.TotalAmount},
		{"unit_selection", req.UnitSelection},
		{"distribution_method", req.DistributionMethod},
		{"role", req.Role},
		{"description", req.Description},
		{"bill_due", req.BillDue},
		{"payment_method", req.PaymentMethod},
		{"billing_date", req.BillingDate},
	}
	if len(req.SpecificUnits) > 0 {
		b, err := json.Marshal(req.SpecificUnits)
		if err != nil {
			return nil, "", err
		}
		fields = append(fields, [2]string{"specific_units", string(b)})
	}
	if len(req.CustomUnitCosts) > 0 {
		b, err := json.Marshal(req.CustomUnitCosts)
		if err != nil {
			return nil, "", err
		}
		fields = append(fields, [2]string{"custom_unit_costs", string(b)})
	}
	if req.GracePeriodDays > 0 {
		fields = append(fields, [2]string{"grace_period_days", strconv.Itoa(req.GracePeriodDays)})
	}
	if req.AutoTransferToDebt {
		fields = append(fields, [2]string{"auto_transfer_to_debt", "true"})
	}

	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if a := req.Attachment; a != nil && len(a.Content) > 0 {
		part, err := w.CreateFormFile("attachment", a.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
