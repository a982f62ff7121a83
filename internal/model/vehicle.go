package model

import (
	"fmt"
	"time"
)

// VehicleCondition describes how a vehicle was acquired
type VehicleCondition string

// VehicleStatus is the rental availability of a vehicle
type VehicleStatus string

const (
	ConditionNew               VehicleCondition = "new"
	ConditionUsed              VehicleCondition = "used"
	ConditionCertifiedPreOwned VehicleCondition = "certified_pre_owned"

	StatusAvailable   VehicleStatus = "available"
	StatusRented      VehicleStatus = "rented"
	StatusMaintenance VehicleStatus = "maintenance"
	StatusInactive    VehicleStatus = "inactive"
)

// Valid reports whether c is a known condition; empty is allowed
func (c VehicleCondition) Valid() bool {
	switch c {
	case "", ConditionNew, ConditionUsed, ConditionCertifiedPreOwned:
		return true
	}
	return false
}

// Valid reports whether s is a known status; empty is allowed
func (s VehicleStatus) Valid() bool {
	switch s {
	case "", StatusAvailable, StatusRented, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Vehicle is a single inventory unit
type Vehicle struct {
	ID                     string           `json:"id"`
	OrganizationID         string           `json:"organization_id"`
	LocationID             string           `json:"location_id"`
	VIN                    string           `json:"vin"`
	Make                   string           `json:"make"`
	Model                  string           `json:"model"`
	Year                   int              `json:"year"`
	Trim                   string           `json:"trim"`
	ColorExterior          string           `json:"color_exterior"`
	ColorInterior          string           `json:"color_interior"`
	Condition              VehicleCondition `json:"condition"`
	Mileage                int              `json:"mileage"`
	LicensePlate           string           `json:"license_plate"`
	Status                 VehicleStatus    `json:"status"`
	IsEligibleForService   bool             `json:"is_eligible_for_service"`
	HasWarranty            bool             `json:"has_warranty"`
	WarrantyExpirationDate *time.Time       `json:"warranty_expiration_date,omitempty"`
	WarrantyType           string           `json:"warranty_type"`
	WarrantyDetails        string           `json:"warranty_details"`
	DailyRate              float64          `json:"daily_rate"`
	WeeklyRate             float64          `json:"weekly_rate"`
	MonthlyRate            float64          `json:"monthly_rate"`
	BodyStyle              string           `json:"body_style"`
	Transmission           string           `json:"transmission"`
	Drivetrain             string           `json:"drivetrain"`
	FuelType               string           `json:"fuel_type"`
	Engine                 string           `json:"engine"`
	MPGCity                int              `json:"mpg_city"`
	MPGHighway             int              `json:"mpg_highway"`
	Seats                  int              `json:"seats"`
	Doors                  int              `json:"doors"`
	StockNumber            string           `json:"stock_number"`
	Description            string           `json:"description"`
	Features               []string         `json:"features"`
	Images                 []string         `json:"images"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// Title renders "2022 Honda Accord EX-L"
func (v Vehicle) Title() string {
	title := fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
	if v.Trim != "" {
		title += " " + v.Trim
	}
	return title
}

// VehicleRequest is the body of POST /api/vehicles and PUT /api/vehicles/:id
type VehicleRequest struct {
	LocationID           string           `json:"location_id"`
	VIN                  string           `json:"vin"`
	Make                 string           `json:"make"`
	Model                string           `json:"model"`
	Year                 int              `json:"year"`
	Trim                 string           `json:"trim"`
	ColorExterior        string           `json:"color_exterior"`
	ColorInterior        string           `json:"color_interior"`
	Condition            VehicleCondition `json:"condition"`
	Mileage              int              `json:"mileage"`
	LicensePlate         string           `json:"license_plate"`
	Status               VehicleStatus    `json:"status,omitempty"`
	IsEligibleForService bool             `json:"is_eligible_for_service"`
	BodyStyle            string           `json:"body_style"`
	Transmission         string           `json:"transmission"`
	Drivetrain           string           `json:"drivetrain"`
	FuelType             string           `json:"fuel_type"`
	Engine               string           `json:"engine"`
	MPGCity              int              `json:"mpg_city"`
	MPGHighway           int              `json:"mpg_highway"`
	Seats                int              `json:"seats"`
	Doors                int              `json:"doors"`
	StockNumber          string           `json:"stock_number"`
	Description          string           `json:"description"`
	DailyRate            float64          `json:"daily_rate"`
	WeeklyRate           float64          `json:"weekly_rate"`
	MonthlyRate          float64          `json:"monthly_rate"`
	Features             []string         `json:"features"`
	Images               []string         `json:"images"`
}

// RequestFrom builds an update request pre-filled from an existing vehicle,
// the way the edit form is populated.
func RequestFrom(v Vehicle) VehicleRequest {
	return VehicleRequest{
		LocationID:           v.LocationID,
		VIN:                  v.VIN,
		Make:                 v.Make,
		Model:                v.Model,
		Year:                 v.Year,
		Trim:                 v.Trim,
		ColorExterior:        v.ColorExterior,
		ColorInterior:        v.ColorInterior,
		Condition:            v.Condition,
		Mileage:              v.Mileage,
		LicensePlate:         v.LicensePlate,
		Status:               v.Status,
		IsEligibleForService: v.IsEligibleForService,
		BodyStyle:            v.BodyStyle,
		Transmission:         v.Transmission,
		Drivetrain:           v.Drivetrain,
		FuelType:             v.FuelType,
		Engine:               v.Engine,
		MPGCity:              v.MPGCity,
		MPGHighway:           v.MPGHighway,
		Seats:                v.Seats,
		Doors:                v.Doors,
		StockNumber:          v.StockNumber,
		Description:          v.Description,
		DailyRate:            v.DailyRate,
		WeeklyRate:           v.WeeklyRate,
		MonthlyRate:          v.MonthlyRate,
		Features:             v.Features,
		Images:               v.Images,
	}
}

// Validate checks the fields the form marks as required
func (r VehicleRequest) Validate() error {
	switch {
	case r.LocationID == "":
		return fmt.Errorf("location is required")
	case r.VIN == "":
		return fmt.Errorf("vin is required")
	case r.Make == "":
		return fmt.Errorf("make is required")
	case r.Model == "":
		return fmt.Errorf("model is required")
	case r.Year <= 0:
		return fmt.Errorf("year is required")
	case !r.Condition.Valid():
		return fmt.Errorf("invalid condition %q (must be new, used, or certified_pre_owned)", r.Condition)
	case !r.Status.Valid():
		return fmt.Errorf("invalid status %q (must be available, rented, maintenance, or inactive)", r.Status)
	}
	return nil
}
