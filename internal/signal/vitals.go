package signal

import (
	"fmt"
	"math"
	"strconv"
)

// Valores representativos fijos; no se derivan de las curvas.
const (
	fixedSpO2      = 98
	fixedSystolic  = 120
	fixedDiastolic = 80
	fixedTemp      = 37.0
	fixedEtCO2     = 35
)

// BloodPressure es una lectura de PNI en mmHg.
type BloodPressure struct {
	Systolic  int `json:"sys"`
	Diastolic int `json:"dia"`
}

// MAP = dia + (sys-dia)/3, redondeado.
func (bp BloodPressure) MAP() int {
	return int(math.Round(float64(bp.Diastolic) + float64(bp.Systolic-bp.Diastolic)/3))
}

func (bp BloodPressure) String() string {
	return fmt.Sprintf("%d/%d (%d)", bp.Systolic, bp.Diastolic, bp.MAP())
}

// Vitals es la instantánea de valores numéricos de un tick.
type Vitals struct {
	HR    int           `json:"hr"`
	SpO2  int           `json:"spo2"`
	RR    int           `json:"rr"`
	NIBP  BloodPressure `json:"nibp"`
	Temp  float64       `json:"temp"`
	EtCO2 int           `json:"etco2"`
}

// VitalsFor arma la instantánea coherente con r.
func VitalsFor(r Rates) Vitals {
	return Vitals{
		HR:    int(math.Round(r.HeartRate)),
		SpO2:  fixedSpO2,
		RR:    int(math.Round(r.RespRate)),
		NIBP:  BloodPressure{Systolic: fixedSystolic, Diastolic: fixedDiastolic},
		Temp:  fixedTemp,
		EtCO2: fixedEtCO2,
	}
}

// Display devuelve los textos tal como los muestra el monitor.
func (v Vitals) Display() map[string]string {
	return map[string]string{
		"hr":   strconv.Itoa(v.HR),
		"spo2": strconv.Itoa(v.SpO2) + "%",
		"rr":   strconv.Itoa(v.RR),
		"nibp": v.NIBP.String(),
		"temp": strconv.FormatFloat(v.Temp, 'f', 1, 64) + "°C",
		"co2":  strconv.Itoa(v.EtCO2) + " mmHg",
	}
}
