package models

// Market identifies one of the two trading modes.
type Market string

const (
	MarketForex Market = "forex" // weekly closure rule applies
	MarketOTC   Market = "otc"   // always open
)

// OTCPairPrefix marks pairs derived for the OTC list when the config
// snapshot only carries forex pairs.
const OTCPairPrefix = "OTC "
