package charts

// Dataset is one entry of a Chart.js line chart's datasets array.
type Dataset struct {
	Label            string  `json:"label"`
	Data             []Point `json:"data"`
	BorderColor      string  `json:"borderColor"`
	BackgroundColor  string  `json:"backgroundColor"`
	Fill             any     `json:"fill"`
	PointRadius      int     `json:"pointRadius"`
	PointHoverRadius int     `json:"pointHoverRadius"`
	BorderWidth      int     `json:"borderWidth"`
	BorderDash       []int   `json:"borderDash,omitempty"`
	Tension          float64 `json:"tension"`
	Parsing          bool    `json:"parsing"`
	ShowLine         bool    `json:"showLine,omitempty"`
}

const (
	tension = 0.4
	// fillPrevious makes Chart.js fill down to the dataset just before this one.
	fillPrevious = "-1"
)

// ChartJSDatasets flattens category series into Chart.js datasets. Per
// category the order is upper bound, lower bound, main line, base line; the
// lower bound must directly follow the upper one for its fill to land on it.
func ChartJSDatasets(series []CategorySeries) []Dataset {
	out := make([]Dataset, 0, len(series)*4)
	for _, cs := range series {
		if cs.Band != nil {
			out = append(out,
				bandDataset(cs.Band.Upper, "transparent", false),
				bandDataset(cs.Band.Lower, cs.Band.FillColor, fillPrevious),
			)
		}
		if cs.Main != nil {
			out = append(out, Dataset{
				Label:            cs.Main.Label,
				Data:             cs.Main.Points,
				BorderColor:      cs.Color,
				BackgroundColor:  cs.Color,
				Fill:             false,
				PointHoverRadius: 4,
				BorderWidth:      2,
				Tension:          tension,
			})
		}
		if cs.Base != nil {
			out = append(out, Dataset{
				Label:            cs.Base.Label,
				Data:             cs.Base.Points,
				BorderColor:      cs.Color,
				BackgroundColor:  cs.Color,
				Fill:             false,
				PointHoverRadius: 4,
				BorderWidth:      1,
				BorderDash:       []int{5, 5},
				Tension:          tension,
			})
		}
	}
	return out
}

func bandDataset(s Series, background string, fill any) Dataset {
	return Dataset{
		Label:           s.Label,
		Data:            s.Points,
		BorderColor:     "transparent",
		BackgroundColor: background,
		Fill:            fill,
		Tension:         tension,
		ShowLine:        true,
	}
}
