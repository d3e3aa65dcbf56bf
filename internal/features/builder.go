// Package features turns raw battery sensor readings into the ordered numeric
// vector the health model was trained on.
//
// The column order is fixed by Schema. Both the normalizer and the regression
// model artifacts declare the feature names they were fitted with, and the ml
// package refuses to load artifacts whose names disagree with Schema.
package features

import (
	"math"
	"strconv"
)

// Feature names, in model input order.
const (
	Voltage     = "voltage"
	Current     = "current"
	Temperature = "temperature"
	Power       = "power"
)

// NumFeatures is the length of every Vector.
const NumFeatures = 4

// Schema is the input column order of the health model.
var Schema = [NumFeatures]string{Voltage, Current, Temperature, Power}

// SensorReading is one capture of the battery sensors.
type SensorReading struct {
	Voltage     float64 `json:"voltage"`     // V
	Current     float64 `json:"current"`     // A
	Temperature float64 `json:"temperature"` // °C
}

// Vector holds the model inputs ordered by Schema.
type Vector [NumFeatures]float64

// Build derives the feature vector for a reading. Values are not range
// checked; whatever the sensors report is passed through.
func Build(r SensorReading) Vector {
	return Vector{r.Voltage, r.Current, r.Temperature, Round2(r.Voltage * r.Current)}
}

// Power returns the derived power column.
func (v Vector) Power() float64 { return v[3] }

// Slice returns the vector as a fresh slice for the normalizer.
func (v Vector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// Round2 rounds x to two decimal places the way Python's round(x, 2) does:
// the exact binary value is rounded, and exact ties go to the even digit.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// MatchesSchema reports whether names lists exactly the Schema columns in order.
func MatchesSchema(names []string) bool {
	if len(names) != NumFeatures {
		return false
	}
	for i, n := range names {
		if n != Schema[i] {
			return false
		}
	}
	return true
}
