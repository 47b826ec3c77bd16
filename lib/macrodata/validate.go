package macrodata

// plausible bounds per indicator, chosen conservatively to flag only
// truly impossible numbers. indicators without an entry are unbounded.
var indicatorRanges = map[string][2]float64{
	"unemployment":      {0, 30},
	"inflation_mom":     {-10, 10},
	"inflation_yoy":     {-10, 50},
	"interest_rate":     {0, 30},
	"retail_sales_mom":  {-50, 50},
	"retail_sales_yoy":  {-50, 100},
	"services_pmi":      {0, 100},
	"manufacturing_pmi": {0, 100},
	"ppi":               {-20, 20},
	"gdp_growth_qoq":    {-50, 50},
}

// Validate discards values outside the indicator's plausible range.
// It never corrects, only filters; absent values pass through as-is.
func Validate(key string, v Value) Value {
	if !v.Valid {
		return v
	}
	bounds, ok := indicatorRanges[key]
	if !ok {
		return v
	}
	if v.Float < bounds[0] || v.Float > bounds[1] {
		return Absent(ReasonOutOfRange)
	}
	return v
}
