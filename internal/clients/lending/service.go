package lending

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultSupplyAsset is the reserve whose supply rate is reported as the
// lending APY.
const DefaultSupplyAsset = "USDC"

// Service serves normalized lending positions and supply APYs. It implements
// domain.LendingPositionProvider and the aggregator's lending APY provider.
type Service struct {
	reader    Reader
	cacheRepo *clientdata.Repository
	asset     string
	log       zerolog.Logger
}

// NewService creates a lending service. cacheRepo is optional.
func NewService(reader Reader, cacheRepo *clientdata.Repository, asset string, log zerolog.Logger) *Service {
	if asset == "" {
		asset = DefaultSupplyAsset
	}
	return &Service{
		reader:    reader,
		cacheRepo: cacheRepo,
		asset:     asset,
		log:       log.With().Str("service", "lending").Logger(),
	}
}

// Position returns the account's normalized lending position.
func (s *Service) Position(ctx context.Context, account string) (domain.LendingPosition, error) {
	fetch := func(ctx context.Context) (domain.LendingPosition, error) {
		data, err := s.reader.AccountData(ctx, account)
		if err != nil {
			return domain.LendingPosition{}, fmt.Errorf("failed to read lending account: %w", err)
		}
		return data.Normalize()
	}

	if s.cacheRepo == nil {
		return fetch(ctx)
	}

	position, status, err := clientdata.GetOrFetch(ctx, s.cacheRepo, clientdata.TableLendingAccounts,
		strings.ToLower(account), clientdata.TTLLendingAccount, fetch)
	if err != nil {
		return domain.LendingPosition{}, err
	}

	s.log.Debug().Str("account", account).Str("cache", string(status)).Msg("Lending position loaded")
	return position, nil
}

// SupplyAPY returns the supply APY percent of the configured reserve.
func (s *Service) SupplyAPY(ctx context.Context) (float64, error) {
	fetch := func(ctx context.Context) (float64, error) {
		rate, err := s.reader.LiquidityRate(ctx, s.asset)
		if err != nil {
			return 0, fmt.Errorf("failed to read liquidity rate: %w", err)
		}
		return RayToAPY(rate)
	}

	if s.cacheRepo == nil {
		return fetch(ctx)
	}

	apy, _, err := clientdata.GetOrFetch(ctx, s.cacheRepo, clientdata.TableLendingReserves,
		s.asset, clientdata.TTLLendingReserves, fetch)
	return apy, err
}
