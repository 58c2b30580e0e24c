package domain

import (
	"errors"
	"fmt"
)

// ConfigurationError - неизвестный класс автомобиля или отсутствующая строка
// тарифной таблицы. Блокирует расчет и отправку брони.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ошибка конфигурации (%s): %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("ошибка конфигурации: %s", e.Msg)
}

// ValidationError - некорректные данные формы, перехватывается до любых
// внешних вызовов.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// PaymentDeclinedError - шлюз явно отклонил платеж. Бронь не отправляется.
type PaymentDeclinedError struct {
	Reason string
}

func (e PaymentDeclinedError) Error() string {
	if e.Reason == "" {
		return "платеж отклонен"
	}
	return fmt.Sprintf("платеж отклонен: %s", e.Reason)
}

// GatewayUnavailableError - транспортная ошибка при обращении к платежному
// шлюзу. Можно повторить, бронь не отправляется.
type GatewayUnavailableError struct {
	Err error
}

func (e GatewayUnavailableError) Error() string {
	return fmt.Sprintf("платежный шлюз недоступен: %v", e.Err)
}

func (e GatewayUnavailableError) Unwrap() error { return e.Err }

// SubmissionFailedError - транспортная ошибка при записи в таблицу.
// Повтор не должен списывать оплату заново.
type SubmissionFailedError struct {
	Op  string
	Err error
}

func (e SubmissionFailedError) Error() string {
	return fmt.Sprintf("ошибка записи в таблицу (%s): %v", e.Op, e.Err)
}

func (e SubmissionFailedError) Unwrap() error { return e.Err }

// SyncTransientError - ошибка фонового опроса таблицы. Только логируется,
// пользователю не показывается.
type SyncTransientError struct {
	Err error
}

func (e SyncTransientError) Error() string {
	return fmt.Sprintf("ошибка синхронизации: %v", e.Err)
}

func (e SyncTransientError) Unwrap() error { return e.Err }

func IsConfiguration(err error) bool {
	var target ConfigurationError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsPaymentDeclined(err error) bool {
	var target PaymentDeclinedError
	return errors.As(err, &target)
}

func IsGatewayUnavailable(err error) bool {
	var target GatewayUnavailableError
	return errors.As(err, &target)
}

func IsSubmissionFailed(err error) bool {
	var target SubmissionFailedError
	return errors.As(err, &target)
}

func IsSyncTransient(err error) bool {
	var target SyncTransientError
	return errors.As(err, &target)
}
