package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Time - время внутри суток с точностью до минуты.
// Хранится как количество минут с начала суток, чтобы арифметика слотов
// оставалась целочисленной.
type Time struct {
	Minutes int
}

func NewTime(hour, minute int) Time {
	return Time{Minutes: hour*60 + minute}
}

// ParseTime парсит время из строки в формате "15:04:05", если не удается,
// то пробует формат без секунд "15:04"
func ParseTime(str string) (Time, error) {
	parsedTime, err := time.Parse("15:04:05", str)
	if err != nil {
		parsedTime, err = time.Parse("15:04", str)
		if err != nil {
			return Time{}, fmt.Errorf("failed to parse time: %v", err)
		}
	}
	return Time{Minutes: parsedTime.Hour()*60 + parsedTime.Minute()}, nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("failed to parse time: expected json string, got %s", data)
	}

	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])
	parsedTime, err := ParseTime(str)
	if err != nil {
		return err
	}
	*t = parsedTime
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Minutes/60, t.Minutes%60)
}
