package bulk

import (
	"bytes"
	"encoding/csv"
)

// TemplateFileName is the suggested name for the downloaded template
const TemplateFileName = "vehicle_upload_template.csv"

// TemplateHeader lists the columns the bulk-upload endpoint understands
var TemplateHeader = []string{
	"vin", "make", "model", "year", "trim",
	"color_exterior", "color_interior", "condition", "mileage", "license_plate",
	"body_style", "transmission", "drivetrain", "fuel_type", "engine",
	"mpg_city", "mpg_highway", "seats", "doors", "stock_number",
	"description", "daily_rate", "weekly_rate", "monthly_rate", "features",
}

// RequiredColumns must be filled on every row
var RequiredColumns = []string{"vin", "make", "model", "year"}

var templateExample = []string{
	"1HGBH41JXMN109186", "Honda", "Accord", "2022", "EX-L",
	"Silver", "Black", "used", "15000", "ABC123",
	"Sedan", "Automatic", "FWD", "Gasoline", "2.0L I4",
	"30", "38", "5", "4", "STK001",
	"Well-maintained Honda Accord", "45.00", "280.00", "1000.00", "Bluetooth|Backup Camera|Heated Seats",
}

// Template renders the header row plus one example row
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(TemplateHeader)
	_ = w.Write(templateExample)
	w.Flush()
	return buf.Bytes()
}
