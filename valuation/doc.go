// Package valuation computes the purchasing-power impact of a BOB -> USDT
// peer-to-peer conversion.
//
// # Calculation
//
// Given the BOB amount spent, the P2P rate the USDT was bought at and an
// official BOB/USDT reference rate:
//
//	usdtPurchased     = initialBOBAmount / p2pRate
//	availableBOBValue = usdtPurchased * officialRate
//	percentageChange  = ((availableBOBValue - initialBOBAmount) / initialBOBAmount) * 100
//
// The expressions are evaluated in float64 exactly in this order.
//
// # Outcome
//
// A negative percentage change is a loss (the USDT is worth less BOB at the
// official rate than was spent). Zero and positive values are a gain, break-even
// included.
package valuation
