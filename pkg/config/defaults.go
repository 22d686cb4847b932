package config

// Default returns the stock Japan configuration: four regions on a square
// basis, nine cities with masks and circles, and the category palette.
func Default() *SceneConfig {
	cfg := &SceneConfig{
		Version: "0.1.0",
		Data:    DataDef{Receipts: "data/receipts.json"},
		Regions: defaultRegions(),
		Categories: []Category{
			{Code: "RC", Label: "Restaurant & Cafe", Color: "#f096aa"},
			{Code: "CS", Label: "Convenience Store", Color: "#8cc8a0"},
			{Code: "Food", Label: "Food", Color: "#e67878"},
			{Code: "Goods", Label: "Goods", Color: "#78a0e6"},
			{Code: "Transport", Label: "Transport", Color: "#f0be78"},
			{Code: "Service", Label: "Service", Color: "#be8cdc"},
			{Code: OtherCategory, Label: "Other", Color: "#b4b4b4"},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func defaultRegions() []Region {
	return []Region{
		{
			Name:       "Hokkaido",
			Rect:       PercentRect{X: 60, Y: 0, W: 38, H: 30},
			Background: "images/hokkaido.png",
			Cities: []City{
				{Name: "Sapporo", Mask: "masks/hokkaido_sapporo.png", Circle: &Circle{X: 35, Y: 40, Radius: 25}},
				{Name: "Chitose", Mask: "masks/hokkaido_chitose.png", Circle: &Circle{X: 55, Y: 60, Radius: 18}},
				{Name: "Hakodate", Mask: "masks/hokkaido_hakodate.png", Circle: &Circle{X: 25, Y: 85, Radius: 15}},
			},
		},
		{
			Name:       "Honshu",
			Rect:       PercentRect{X: 28, Y: 28, W: 60, H: 52},
			Background: "images/honshu.png",
			Cities: []City{
				{Name: "Tokyo", Mask: "masks/honshu_tokyo.png", Circle: &Circle{X: 72, Y: 55, Radius: 16}},
				{Name: "Nagoya", Mask: "masks/honshu_nagoya.png", Circle: &Circle{X: 52, Y: 68, Radius: 12}},
				{Name: "Osaka", Mask: "masks/honshu_osaka.png", Circle: &Circle{X: 38, Y: 75, Radius: 14}},
			},
		},
		{
			Name:       "Shikoku",
			Rect:       PercentRect{X: 30, Y: 78, W: 20, H: 12},
			Background: "images/shikoku.png",
			Cities: []City{
				{Name: "Takamatsu", Mask: "masks/shikoku_takamatsu.png", Circle: &Circle{X: 60, Y: 35, Radius: 30}},
			},
		},
		{
			Name:       "Kyushu",
			Rect:       PercentRect{X: 0, Y: 80, W: 14, H: 19},
			Background: "images/kyushu.png",
			Cities: []City{
				{Name: "Fukuoka", Mask: "masks/kyushu_fukuoka.png", Circle: &Circle{X: 45, Y: 25, Radius: 30}},
				{Name: "Kagoshima", Mask: "masks/kyushu_kagoshima.png", Circle: &Circle{X: 45, Y: 78, Radius: 25}},
			},
		},
	}
}

// ApplyDefaults fills zero-valued settings with their stock values.
func ApplyDefaults(cfg *SceneConfig) {
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	if cfg.Canvas.Width == 0 {
		cfg.Canvas.Width = 1000
	}
	if cfg.Canvas.Height == 0 {
		cfg.Canvas.Height = 1000
	}
	if cfg.Canvas.Basis == "" {
		cfg.Canvas.Basis = BasisSquare
	}
	if cfg.Data.Receipts == "" {
		cfg.Data.Receipts = "data/receipts.json"
	}

	ps := &cfg.PriceScale
	if ps.OutMin == 0 && ps.OutMax == 0 {
		ps.OutMin, ps.OutMax = 2, 22
	}
	if ps.Midpoint == 0 {
		ps.Midpoint = (ps.OutMin + ps.OutMax) / 2
	}

	pl := &cfg.Placement
	if pl.Mode == "" {
		pl.Mode = PlacementMask
	}
	if pl.CentralFraction == 0 {
		pl.CentralFraction = 0.15
	}
	if pl.CentralMin == 0 {
		pl.CentralMin = 20
	}

	m := &cfg.Mask
	if m.Color == "" {
		m.Color = "#000000"
	}
	if m.Tolerance == 0 {
		m.Tolerance = 40
	}
	if m.Margin == 0 {
		m.Margin = 0.05
	}
	if m.Stride == 0 {
		m.Stride = 1
	}

	th := &cfg.Thumbnails
	if th.MinWidth == 0 {
		th.MinWidth = 6
	}
	if th.MaxWidth == 0 {
		th.MaxWidth = 28
	}
	if th.Aspect == 0 {
		th.Aspect = 2.2
	}
	if th.CellSize == 0 {
		th.CellSize = 2
	}

	cam := &cfg.Camera
	if cam.Ease == 0 {
		cam.Ease = 0.1
	}
	if cam.FadeEase == 0 {
		cam.FadeEase = 0.08
	}
	if cam.Margin == 0 {
		cam.Margin = 0.08
	}
	if cam.MaxCityZoom == 0 {
		cam.MaxCityZoom = 4
	}

	if cfg.Interaction.HitSlop == 0 {
		cfg.Interaction.HitSlop = 1.4
	}
	if cfg.Interaction.DoubleClickMS == 0 {
		cfg.Interaction.DoubleClickMS = 400
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.TickHz == 0 {
		cfg.Server.TickHz = 60
	}

	if len(cfg.Regions) == 0 {
		cfg.Regions = defaultRegions()
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = []Category{{Code: OtherCategory, Label: "Other", Color: "#b4b4b4"}}
	}
}
