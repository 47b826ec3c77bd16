package tradingeconomics

import "macroscan-backend/lib/telemetry"

var tracer = telemetry.Tracer("macroscan.lib.scrapers.tradingeconomics")
