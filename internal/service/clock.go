package service

import "time"

// Clock абстрагирует текущее время, чтобы проверку границы месяца
// можно было детерминированно тестировать
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock возвращает часы на основе системного времени
func NewSystemClock() Clock {
	return systemClock{}
}
