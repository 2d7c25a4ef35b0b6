package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date - календарная дата без времени и таймзоны.
// Все сравнения выполняются по году/месяцу/дню в "гражданской" таймзоне тьютора.
type Date struct {
	Date time.Time
}

// ParseDate парсит дату из строки в формате "2006-01-02", если не удается,
// то пробует дату со временем (так PostgREST отдает колонки timestamp)
func ParseDate(str string) (Date, error) {
	parsedDate, err := time.Parse("2006-01-02", str)
	if err != nil {
		parsedDate, err = time.Parse("2006-01-02T15:04:05", str)
		if err != nil {
			parsedDate, err = time.Parse(time.RFC3339, str)
			if err != nil {
				return Date{}, fmt.Errorf("failed to parse date: %v", err)
			}
		}
	}

	return Date{Date: time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("failed to parse date: expected json string, got %s", data)
	}

	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedDate, err := ParseDate(str)
	if err != nil {
		return err
	}

	*d = parsedDate
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Date) String() string {
	return d.Date.Format("2006-01-02")
}

// Weekday возвращает день недели, где 0 - воскресенье, 6 - суббота
func (d Date) Weekday() int {
	return int(d.Date.Weekday())
}

func (d Date) Equal(other Date) bool {
	return d.Date.Year() == other.Date.Year() &&
		d.Date.Month() == other.Date.Month() &&
		d.Date.Day() == other.Date.Day()
}

func (d Date) After(other Date) bool {
	return d.Date.After(other.Date) && !d.Equal(other)
}

func (d Date) IsZero() bool {
	return d.Date.IsZero()
}
