package models

import (
	"fmt"
	"strconv"
	"strings"
)

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "Cash"    // Оплата водителю наличными
	PaymentMethodCard    PaymentMethod = "Card"    // Полная предоплата картой
	PaymentMethodDeposit PaymentMethod = "Deposit" // Депозит 25% картой, остаток наличными
)

// ParsePaymentMethod проверяет способ оплаты из формы.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash":
		return PaymentMethodCash, true
	case "card":
		return PaymentMethodCard, true
	case "deposit":
		return PaymentMethodDeposit, true
	default:
		return "", false
	}
}

// IsCardLike сообщает, списывается ли оплата через шлюз (надбавка 5%).
func (m PaymentMethod) IsCardLike() bool {
	return m == PaymentMethodCard || m == PaymentMethodDeposit
}

type PaymentKind int

const (
	PaymentCashPending PaymentKind = iota // Ничего не списано, оплата водителю
	PaymentDepositPaid                    // Списано 25%, остаток наличными
	PaymentFullyPaid                      // Списано 100%
)

// PaymentState - нормализованное состояние оплаты. В таблице хранится одной
// текстовой колонкой (наследие схемы); внутри кода состояние типизировано,
// наружу рендерится прежний текст, который по-прежнему разбирается
// подстроками "100%", "25%", "card".
type PaymentState struct {
	Kind         PaymentKind
	TxnRef       string // Референс транзакции шлюза, пуст для наличных
	DueOnArrival int    // Остаток наличными при депозите, в AED
}

// String рендерит legacy-текст для колонки Payment.
func (p PaymentState) String() string {
	switch p.Kind {
	case PaymentFullyPaid:
		if p.TxnRef != "" {
			return fmt.Sprintf("Card 100%% prepaid (txn %s)", p.TxnRef)
		}
		return "Card 100% prepaid"
	case PaymentDepositPaid:
		if p.TxnRef != "" {
			return fmt.Sprintf("Card 25%% deposit (txn %s) - AED %d due on arrival", p.TxnRef, p.DueOnArrival)
		}
		return fmt.Sprintf("Card 25%% deposit - AED %d due on arrival", p.DueOnArrival)
	default:
		return "Cash"
	}
}

// ParsePaymentState восстанавливает состояние оплаты из legacy-текста теми же
// проверками подстрок, которые использует квитанция.
func ParsePaymentState(raw string) PaymentState {
	text := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(text, "25%"):
		return PaymentState{
			Kind:         PaymentDepositPaid,
			TxnRef:       extractTxnRef(raw),
			DueOnArrival: extractDueAmount(raw),
		}
	case strings.Contains(text, "100%"), strings.Contains(text, "card"):
		return PaymentState{Kind: PaymentFullyPaid, TxnRef: extractTxnRef(raw)}
	default:
		return PaymentState{Kind: PaymentCashPending}
	}
}

// extractTxnRef достает референс транзакции из текста вида "(txn XXX)".
func extractTxnRef(raw string) string {
	idx := strings.Index(strings.ToLower(raw), "txn ")
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len("txn "):]
	if end := strings.IndexAny(rest, ") "); end >= 0 {
		return rest[:end]
	}
	return rest
}

// extractDueAmount достает остаток наличными из текста вида "AED 123 due".
func extractDueAmount(raw string) int {
	idx := strings.Index(strings.ToUpper(raw), "AED ")
	if idx < 0 {
		return 0
	}
	rest := raw[idx+len("AED "):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}
