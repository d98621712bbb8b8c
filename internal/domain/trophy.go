package domain

import "time"

// Trophy is a single catch record.
type Trophy struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	OwnerID      string    `json:"user_id" gorm:"column:user_id;type:varchar(36);not null;index:idx_trophies_owner,priority:1"`
	Species      string    `json:"species" gorm:"not null" validate:"required,max=120"`
	Length       float64   `json:"length" gorm:"not null;check:chk_trophies_length,length > 0" validate:"gt=0"`
	Width        float64   `json:"width" gorm:"not null;check:chk_trophies_width,width > 0" validate:"gt=0"`
	Weight       *float64  `json:"weight,omitempty" validate:"omitempty,gt=0"`
	PhotoURL     string    `json:"photo_url" gorm:"not null" validate:"required,uri"`
	LocationName string    `json:"location_name" gorm:"not null;default:''"`
	Latitude     float64   `json:"latitude" gorm:"not null" validate:"gte=-90,lte=90"`
	Longitude    float64   `json:"longitude" gorm:"not null" validate:"gte=-180,lte=180"`
	SpatialKey   string    `json:"-" gorm:"type:varchar(32);not null;default:''"`
	Bait         *string   `json:"bait,omitempty" validate:"omitempty,max=200"`
	WaterTemp    *float64  `json:"water_temp,omitempty"`
	Notes        string    `json:"notes" gorm:"not null;default:''" validate:"max=4000"`
	CaughtAt     time.Time `json:"caught_at" gorm:"not null;index:idx_trophies_owner,priority:2;index:idx_trophies_public,priority:2"`
	IsPublic     bool      `json:"is_public" gorm:"not null;default:false;index:idx_trophies_public,priority:1"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (Trophy) TableName() string { return "trophies" }

// TrophyGeoIndex is the spatial index row of a public trophy. It is derived
// from the primary record and can be rebuilt at any time.
type TrophyGeoIndex struct {
	TrophyID  string  `gorm:"type:varchar(36);primaryKey"`
	CellLat   int     `gorm:"not null;index:idx_trophy_geo_cell,priority:1"`
	CellLon   int     `gorm:"not null;index:idx_trophy_geo_cell,priority:2"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}

func (TrophyGeoIndex) TableName() string { return "trophy_geo_index" }

// CreateTrophyInput is what a caller supplies to create a trophy.
type CreateTrophyInput struct {
	Species      string    `json:"species"`
	Length       float64   `json:"length"`
	Width        float64   `json:"width"`
	Weight       *float64  `json:"weight,omitempty"`
	PhotoURL     string    `json:"photo_url"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Bait         *string   `json:"bait,omitempty"`
	WaterTemp    *float64  `json:"water_temp,omitempty"`
	Notes        string    `json:"notes"`
	CaughtAt     time.Time `json:"caught_at"`
	IsPublic     bool      `json:"is_public"`
}

// TrophyPatch holds the mutable fields of a trophy. Nil fields are left as is.
type TrophyPatch struct {
	Species      *string    `json:"species,omitempty"`
	Length       *float64   `json:"length,omitempty"`
	Width        *float64   `json:"width,omitempty"`
	Weight       *float64   `json:"weight,omitempty"`
	PhotoURL     *string    `json:"photo_url,omitempty"`
	LocationName *string    `json:"location_name,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Bait         *string    `json:"bait,omitempty"`
	WaterTemp    *float64   `json:"water_temp,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CaughtAt     *time.Time `json:"caught_at,omitempty"`
	IsPublic     *bool      `json:"is_public,omitempty"`

	// Clear names optional fields to reset to null: weight, bait, water_temp.
	Clear []string `json:"clear,omitempty"`
}

var clearable = map[string]bool{"weight": true, "bait": true, "water_temp": true}

// Check reports patch-level problems: an unknown name in Clear, or a field
// that is both set and cleared.
func (p TrophyPatch) Check() map[string]string {
	set := map[string]bool{
		"weight":     p.Weight != nil,
		"bait":       p.Bait != nil,
		"water_temp": p.WaterTemp != nil,
	}
	var fields map[string]string
	for _, name := range p.Clear {
		reason := ""
		switch {
		case !clearable[name]:
			reason = "not clearable"
		case set[name]:
			reason = "set and cleared"
		default:
			continue
		}
		if fields == nil {
			fields = map[string]string{}
		}
		fields["clear."+name] = reason
	}
	return fields
}

// Apply copies the non-nil patch fields onto t and then resets the fields
// named in Clear. Identity, ownership and timestamps are not part of the
// patch and cannot change here.
func (p TrophyPatch) Apply(t *Trophy) {
	if p.Species != nil {
		t.Species = *p.Species
	}
	if p.Length != nil {
		t.Length = *p.Length
	}
	if p.Width != nil {
		t.Width = *p.Width
	}
	if p.Weight != nil {
		t.Weight = p.Weight
	}
	if p.PhotoURL != nil {
		t.PhotoURL = *p.PhotoURL
	}
	if p.LocationName != nil {
		t.LocationName = *p.LocationName
	}
	if p.Latitude != nil {
		t.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		t.Longitude = *p.Longitude
	}
	if p.Bait != nil {
		t.Bait = p.Bait
	}
	if p.WaterTemp != nil {
		t.WaterTemp = p.WaterTemp
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.CaughtAt != nil {
		t.CaughtAt = *p.CaughtAt
	}
	if p.IsPublic != nil {
		t.IsPublic = *p.IsPublic
	}
	for _, name := range p.Clear {
		switch name {
		case "weight":
			t.Weight = nil
		case "bait":
			t.Bait = nil
		case "water_temp":
			t.WaterTemp = nil
		}
	}
}
