package market

import (
	"context"
	"math"
	"strconv"

	"github.com/guregu/null/v6"
)

// Category is a named basket of items tracked as an index.
type Category struct {
	Name        string
	Description string
	ItemIDs     []int64
}

// Categories are the tracked item baskets, in display order.
var Categories = []Category{
	{
		Name:        "ORE",
		Description: "All minable",
		ItemIDs:     []int64{434, 1761, 449, 436, 444, 440, 447, 451, 442, 438, 3211, 21622, 453, 27616, 21347, 1625, 1617, 1621, 1627, 1629, 1619, 1623},
	},
	{
		Name:        "FISH",
		Description: "All fishable",
		ItemIDs:     []int64{317, 327, 345, 321, 353, 335, 341, 349, 3379, 331, 359, 10138, 5001, 377, 22826, 363, 11328, 11330, 11332, 371, 22829, 7944, 3142, 383, 395, 389, 13439, 11934, 12934, 22835},
	},
	{
		Name:        "HERB",
		Description: "All herbs",
		ItemIDs:     []int64{249, 199, 201, 251, 253, 203, 255, 205, 207, 257, 2998, 3049, 259, 209, 261, 211, 263, 213, 3000, 3051, 265, 215, 2485, 2481, 267, 217, 269, 219},
	},
	{
		Name:        "BONE",
		Description: "All bones",
		ItemIDs:     []int64{526, 2859, 528, 3183, 530, 532, 3125, 28899, 4812, 3123, 534, 22780, 6812, 536, 11943, 22124, 22783, 4830, 4832, 22786, 6729, 4834},
	},
	{
		Name:        "LOG",
		Description: "All logs",
		ItemIDs:     []int64{1511, 1521, 1519, 1517, 1515, 1513, 19669, 6333, 6332, 2862, 10810, 3239},
	},
	{
		Name:        "BOND",
		Description: "OSRS Bond",
		ItemIDs:     []int64{13190},
	},
}

// Index aggregates the latest prices of a Category.
type Index struct {
	ItemIDs              []int64                `json:"itemIds"`
	Items                map[string]ItemSummary `json:"itemsData"`
	AveragePrice         int64                  `json:"averagePrice"`
	AveragePercentChange null.Float             `json:"averagePercentChange"`
	Description          string                 `json:"description"`
	IsDown               null.Bool              `json:"isDown"`
	Timestamp            int64                  `json:"timestamp"`
}

// Indices computes every category index. Categories without any priced item are omitted.
func (s *Service) Indices(ctx context.Context) (map[string]Index, error) {
	return cached(ctx, s, "indices", "indices", s.opts.TTL.Indices, func(ctx context.Context) (map[string]Index, error) {
		data, err := s.latest(ctx)
		if err != nil {
			return nil, err
		}

		ts := s.now().UnixMilli()
		out := make(map[string]Index, len(Categories))
		for _, cat := range Categories {
			items := make(map[string]ItemSummary, len(cat.ItemIDs))
			var (
				priceSum  float64
				changeSum float64
				changes   int
			)
			for _, id := range cat.ItemIDs {
				key := strconv.FormatInt(id, 10)
				p, ok := data[key]
				if !ok {
					continue
				}
				summary := Summarize(p)
				items[key] = summary
				priceSum += float64(summary.LastPrice)
				if summary.PercentChange.Valid {
					changeSum += summary.PercentChange.Float64
					changes++
				}
			}
			if len(items) == 0 {
				continue
			}

			idx := Index{
				ItemIDs:      cat.ItemIDs,
				Items:        items,
				AveragePrice: int64(math.Round(priceSum / float64(len(items)))),
				Description:  cat.Description,
				Timestamp:    ts,
			}
			if changes > 0 {
				avg := changeSum / float64(changes)
				idx.AveragePercentChange = round2(avg)
				idx.IsDown = null.BoolFrom(avg < 0)
			}
			out[cat.Name] = idx
		}
		return out, nil
	})
}
