package config

// SceneConfig is the top-level configuration for one receipt map project.
type SceneConfig struct {
	Version     string         `yaml:"version" json:"version"`
	Canvas      Canvas         `yaml:"canvas" json:"canvas"`
	Data        DataDef        `yaml:"data" json:"data"`
	PriceScale  PriceScaleDef  `yaml:"price_scale" json:"price_scale"`
	Placement   PlacementDef   `yaml:"placement" json:"placement"`
	Mask        MaskDef        `yaml:"mask" json:"mask"`
	Thumbnails  ThumbnailDef   `yaml:"thumbnails" json:"thumbnails"`
	Camera      CameraDef      `yaml:"camera" json:"camera"`
	Interaction InteractionDef `yaml:"interaction" json:"interaction"`
	Server      ServerDef      `yaml:"server" json:"server"`
	Regions     []Region       `yaml:"regions" json:"regions"`
	Categories  []Category     `yaml:"categories" json:"categories"`
}

// Basis selects what a region's percentage rectangle is resolved against.
type Basis string

const (
	// BasisViewport resolves x/w against the viewport width and y/h against
	// its height.
	BasisViewport Basis = "viewport"
	// BasisSquare resolves every percentage against a centered square of
	// side min(width, height), preserving aspect.
	BasisSquare Basis = "square"
)

// PlacementMode selects how receipts are positioned inside their city.
type PlacementMode string

const (
	PlacementMask      PlacementMode = "mask"
	PlacementCircle    PlacementMode = "circle"
	PlacementThumbnail PlacementMode = "thumbnail"
)

// Canvas is the initial viewport and how region templates are resolved.
type Canvas struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
	Basis  Basis   `yaml:"basis" json:"basis"`
}

// DataDef points at the receipts file, relative to the project directory.
type DataDef struct {
	Receipts string `yaml:"receipts" json:"receipts"`
}

// PriceScaleDef is the output range of the log price scale.
type PriceScaleDef struct {
	OutMin   float64 `yaml:"out_min" json:"out_min"`
	OutMax   float64 `yaml:"out_max" json:"out_max"`
	Midpoint float64 `yaml:"midpoint" json:"midpoint"` // used when all prices are equal
}

// PlacementDef controls the point placer.
type PlacementDef struct {
	Mode            PlacementMode `yaml:"mode" json:"mode"`
	Seed            int64         `yaml:"seed" json:"seed"` // 0 = time based
	CentralFraction float64       `yaml:"central_fraction" json:"central_fraction"`
	CentralMin      int           `yaml:"central_min" json:"central_min"`
}

// MaskDef holds the default pixel classification for city masks.
type MaskDef struct {
	Color     string  `yaml:"color" json:"color"` // hex, "#rrggbb"
	Tolerance int     `yaml:"tolerance" json:"tolerance"`
	Margin    float64 `yaml:"margin" json:"margin"`
	Stride    int     `yaml:"stride" json:"stride"`
}

// ThumbnailDef sizes receipt thumbnails in thumbnail placement mode.
type ThumbnailDef struct {
	MinWidth float64 `yaml:"min_width" json:"min_width"`
	MaxWidth float64 `yaml:"max_width" json:"max_width"`
	Aspect   float64 `yaml:"aspect" json:"aspect"` // height / width when the image size is unknown
	CellSize float64 `yaml:"cell_size" json:"cell_size"`
	Dir      string  `yaml:"dir,omitempty" json:"dir,omitempty"` // receipt images, used for their aspect ratio
}

// CameraDef tunes camera easing and framing.
type CameraDef struct {
	Ease        float64 `yaml:"ease" json:"ease"`
	FadeEase    float64 `yaml:"fade_ease" json:"fade_ease"`
	Margin      float64 `yaml:"margin" json:"margin"`
	MaxCityZoom float64 `yaml:"max_city_zoom" json:"max_city_zoom"` // relative to the region's fit scale
}

// InteractionDef tunes pointer handling.
type InteractionDef struct {
	HitSlop       float64 `yaml:"hit_slop" json:"hit_slop"`
	DoubleClickMS int     `yaml:"double_click_ms" json:"double_click_ms"`
}

// ServerDef configures the interactive server.
type ServerDef struct {
	Port   int `yaml:"port" json:"port"`
	TickHz int `yaml:"tick_hz" json:"tick_hz"`
}

// Region is a top-level geographic area with its percentage rectangle.
type Region struct {
	Name       string      `yaml:"name" json:"name"`
	Rect       PercentRect `yaml:"rect" json:"rect"`
	Background string      `yaml:"background,omitempty" json:"background,omitempty"`
	Cities     []City      `yaml:"cities" json:"cities"`
}

// PercentRect is a rectangle expressed in percent (0-100) of the basis.
type PercentRect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// City is a sub-area of a region.
type City struct {
	Name      string  `yaml:"name" json:"name"`
	Mask      string  `yaml:"mask,omitempty" json:"mask,omitempty"`
	Color     string  `yaml:"color,omitempty" json:"color,omitempty"`         // overrides mask.color
	Tolerance *int    `yaml:"tolerance,omitempty" json:"tolerance,omitempty"` // overrides mask.tolerance
	Circle    *Circle `yaml:"circle,omitempty" json:"circle,omitempty"`
}

// Circle is a city disc in percent of its region rectangle. Radius is a
// percentage of the region's shorter side.
type Circle struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Radius float64 `yaml:"radius" json:"radius"`
}

// Category is one entry of the closed category set.
type Category struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
}

// OtherCategory is the fallback for unrecognized category codes.
const OtherCategory = "Other"

// RegionByName returns the region with the given name, or nil if not found.
func (c *SceneConfig) RegionByName(name string) *Region {
	for i := range c.Regions {
		if c.Regions[i].Name == name {
			return &c.Regions[i]
		}
	}
	return nil
}

// CityByName returns the city definition within its region, or nil.
func (r *Region) CityByName(name string) *City {
	for i := range r.Cities {
		if r.Cities[i].Name == name {
			return &r.Cities[i]
		}
	}
	return nil
}

// NormalizeCategory maps a raw category code onto the configured set.
// Unknown and empty codes become OtherCategory.
func (c *SceneConfig) NormalizeCategory(code string) string {
	for _, cat := range c.Categories {
		if cat.Code == code {
			return code
		}
	}
	return OtherCategory
}

// CategoryByCode returns the category definition, or nil.
func (c *SceneConfig) CategoryByCode(code string) *Category {
	for i := range c.Categories {
		if c.Categories[i].Code == code {
			return &c.Categories[i]
		}
	}
	return nil
}
