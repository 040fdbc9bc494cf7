package domain

import (
	"strconv"
	"time"
)

// MonthNames lists the partition month labels in calendar order.
var MonthNames = [12]string{
	"JANEIRO",
	"FEVEREIRO",
	"MARÇO",
	"ABRIL",
	"MAIO",
	"JUNHO",
	"JULHO",
	"AGOSTO",
	"SETEMBRO",
	"OUTUBRO",
	"NOVEMBRO",
	"DEZEMBRO",
}

// MonthCodes are the three-letter codes used by the short date form ("24 Jan").
var MonthCodes = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// Partition is the (month, year) pair that buckets transactions and accounts.
type Partition struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// MonthIndex returns the zero-based calendar index of a month label, or -1.
func MonthIndex(name string) int {
	for i, m := range MonthNames {
		if m == name {
			return i
		}
	}
	return -1
}

// PartitionOf returns the partition containing t.
func PartitionOf(t time.Time) Partition {
	return Partition{
		Month: MonthNames[t.Month()-1],
		Year:  strconv.Itoa(t.Year()),
	}
}

// Valid reports whether the partition has a known month and a numeric year.
func (p Partition) Valid() bool {
	if MonthIndex(p.Month) < 0 {
		return false
	}
	_, err := strconv.Atoi(p.Year)
	return err == nil
}

// Next returns the following calendar month, wrapping December into January
// of the next year.
func (p Partition) Next() Partition {
	idx := MonthIndex(p.Month)
	year, _ := strconv.Atoi(p.Year)
	if idx == 11 {
		return Partition{Month: MonthNames[0], Year: strconv.Itoa(year + 1)}
	}
	return Partition{Month: MonthNames[idx+1], Year: p.Year}
}

// Before orders partitions chronologically by (year, month index).
func (p Partition) Before(o Partition) bool {
	py, _ := strconv.Atoi(p.Year)
	oy, _ := strconv.Atoi(o.Year)
	if py != oy {
		return py < oy
	}
	return MonthIndex(p.Month) < MonthIndex(o.Month)
}

func (p Partition) String() string {
	return p.Month + "/" + p.Year
}
