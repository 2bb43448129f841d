package credits

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Service wraps the /credits resource.
type Service struct {
	resource *apiclient.Resource[Credit]
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{resource: apiclient.NewResource[Credit](client, "/credits"), now: time.Now}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Credit] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Credit], error) {
		return s.resource.List(ctx, params)
	})
}

// Summary loads the receivable and payable totals, narrowed by creditType
// when set.
func (s *Service) Summary(ctx context.Context, creditType string) (*Summary, error) {
	query := url.Values{}
	if creditType != "" {
		query.Set("creditType", creditType)
	}
	return apiclient.Summary[Summary](ctx, s.resource, query)
}

// Get loads one credit with its payments.
func (s *Service) Get(ctx context.Context, id string) (*Credit, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Pay validates in against the credit's current balance and records the
// payment: POST /credits/:id/pay.
func (s *Service) Pay(ctx context.Context, credit *Credit, in PaymentInput) error {
	if errs := in.Validate(credit.Balance()); !errs.Empty() {
		return errs
	}
	_, err := s.resource.Action(ctx, http.MethodPost, credit.ID.String(), "pay", in.Payload())
	return err
}

// Today is the default payment date.
func (s *Service) Today() time.Time { return s.now() }
