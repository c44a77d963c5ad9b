package testing

import (
	"github.com/aristath/yieldrouter/internal/domain"
)

// NewOpportunityFixtures returns a small catalog spanning every tier, source
// and a few chains.
func NewOpportunityFixtures() []domain.YieldOpportunity {
	return []domain.YieldOpportunity{
		{
			ID:           "vault:usdc-arb",
			Source:       domain.SourceVaultAggregator,
			Chain:        "arbitrum",
			Protocol:     "aave-v3",
			Name:         "USDC Lending",
			DepositToken: "USDC",
			APY:          6.2,
			APR:          6.0,
			TVL:          45_000_000,
			Risk:         domain.RiskLow,
		},
		{
			ID:           "vault:eth-base",
			Source:       domain.SourceVaultAggregator,
			Chain:        "base",
			Protocol:     "morpho",
			Name:         "ETH Vault",
			DepositToken: "WETH",
			APY:          9.8,
			APR:          9.35,
			TVL:          12_000_000,
			Risk:         domain.RiskMedium,
			RiskFactors:  []string{"volatile"},
		},
		{
			ID:           "pool:BTC",
			Source:       domain.SourcePoolProtocol,
			Chain:        "arbitrum",
			Protocol:     "perps-pool",
			Name:         "BTC Pool",
			DepositToken: "USDC",
			APY:          16.5,
			TVL:          8_000_000,
			Risk:         domain.RiskMedium,
		},
		{
			ID:           "pool:ARB",
			Source:       domain.SourcePoolProtocol,
			Chain:        "arbitrum",
			Protocol:     "perps-pool",
			Name:         "ARB Pool",
			DepositToken: "USDC",
			APY:          31,
			TVL:          900_000,
			Risk:         domain.RiskHigh,
		},
		{
			ID:           "strategy:degen",
			Source:       domain.SourceSocialCopy,
			Chain:        "optimism",
			Protocol:     "copy-trading",
			Name:         "Degen Farm",
			DepositToken: "USDC",
			APY:          48,
			TVL:          5_000,
			Risk:         domain.RiskHigh,
		},
	}
}

// NewLendingPositionFixture returns an account with $10k collateral, $4k debt
// and an 80% liquidation threshold (health factor 2.0).
func NewLendingPositionFixture() domain.LendingPosition {
	return domain.LendingPosition{
		TotalCollateralUSD:   10_000,
		TotalDebtUSD:         4_000,
		AvailableToBorrowUSD: 3_500,
		LoanToValue:          75,
		LiquidationThreshold: 80,
		HealthFactor:         2.0,
	}
}
