package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// StaticOracle answers every PartnerFees lookup from a fixed table,
// falling back to StreamflowDefaultFeePercent/0 for partners it has no
// entry for. Used in tests and as the default when no oracle endpoints
// are configured.
type StaticOracle struct {
	table map[vesting.Principal]partnerFees
}

type partnerFees struct {
	partnerPercent   float64
	streamflowPercent float64
}

// NewStaticOracle builds an oracle from a fixed partner table.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{table: make(map[vesting.Principal]partnerFees)}
}

// Set registers the fee split for a partner.
func (o *StaticOracle) Set(partner vesting.Principal, partnerPercent, streamflowPercent float64) {
	o.table[partner] = partnerFees{partnerPercent, streamflowPercent}
}

// PartnerFees implements vesting.FeeOracle.
func (o *StaticOracle) PartnerFees(ctx context.Context, partner vesting.Principal) (float64, float64, error) {
	if f, ok := o.table[partner]; ok {
		return f.partnerPercent, f.streamflowPercent, nil
	}
	return 0, vesting.StreamflowDefaultFeePercent, nil
}

// HTTPOracle queries one or more fee-oracle HTTP endpoints for a
// partner's fee split, racing them with errgroup and taking whichever
// answers first. The first endpoint error cancels the lookups still in
// flight, so it falls back to StreamflowDefaultFeePercent when no
// endpoint has answered before that error, or when every endpoint
// errors or times out, matching the no-oracle-available path
// Create's fee lookup is required to tolerate (spec.md §6.2).
type HTTPOracle struct {
	Endpoints []string
	Client    *http.Client
	Timeout   time.Duration
}

// NewHTTPOracle returns an oracle backed by the given endpoint URLs,
// each expected to answer GET <endpoint>?partner=<hex> with
// {"partner_percent":float,"streamflow_percent":float}.
func NewHTTPOracle(endpoints []string) *HTTPOracle {
	return &HTTPOracle{
		Endpoints: endpoints,
		Client:    &http.Client{Timeout: 2 * time.Second},
		Timeout:   2 * time.Second,
	}
}

type oracleResponse struct {
	PartnerPercent    float64 `json:"partner_percent"`
	StreamflowPercent float64 `json:"streamflow_percent"`
}

// PartnerFees implements vesting.FeeOracle.
func (o *HTTPOracle) PartnerFees(ctx context.Context, partner vesting.Principal) (float64, float64, error) {
	if len(o.Endpoints) == 0 {
		return 0, vesting.StreamflowDefaultFeePercent, nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	results := make(chan oracleResponse, len(o.Endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for _, endpoint := range o.Endpoints {
		endpoint := endpoint
		g.Go(func() error {
			resp, err := o.fetch(gctx, endpoint, partner)
			if err != nil {
				return err
			}
			select {
			case results <- resp:
			default:
			}
			return nil
		})
	}

	err := g.Wait()
	select {
	case resp := <-results:
		return resp.PartnerPercent, resp.StreamflowPercent, nil
	default:
	}
	if err != nil {
		return 0, vesting.StreamflowDefaultFeePercent, nil
	}
	return 0, vesting.StreamflowDefaultFeePercent, nil
}

func (o *HTTPOracle) fetch(ctx context.Context, endpoint string, partner vesting.Principal) (oracleResponse, error) {
	url := fmt.Sprintf("%s?partner=%x", endpoint, partner[:])
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return oracleResponse{}, err
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return oracleResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return oracleResponse{}, fmt.Errorf("bridge: oracle %s returned %d", endpoint, resp.StatusCode)
	}
	var out oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return oracleResponse{}, err
	}
	return out, nil
}

var (
	_ vesting.FeeOracle = (*StaticOracle)(nil)
	_ vesting.FeeOracle = (*HTTPOracle)(nil)
)
