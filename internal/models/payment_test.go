package models

import (
	"strings"
	"testing"
)

func TestPaymentMethodParse(t *testing.T) {
	cases := map[string]PaymentMethod{
		"cash":    PaymentMethodCash,
		" Card ":  PaymentMethodCard,
		"DEPOSIT": PaymentMethodDeposit,
	}
	for raw, want := range cases {
		got, ok := ParsePaymentMethod(raw)
		if !ok || got != want {
			t.Errorf("ParsePaymentMethod(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParsePaymentMethod("crypto"); ok {
		t.Error("неизвестный способ оплаты не должен распознаваться")
	}
}

func TestPaymentMethodCardLike(t *testing.T) {
	if PaymentMethodCash.IsCardLike() {
		t.Error("наличные не проходят через шлюз")
	}
	if !PaymentMethodCard.IsCardLike() || !PaymentMethodDeposit.IsCardLike() {
		t.Error("карта и депозит проходят через шлюз")
	}
}

func TestPaymentStateLegacyText(t *testing.T) {
	full := PaymentState{Kind: PaymentFullyPaid, TxnRef: "tx_42"}.String()
	if !strings.Contains(full, "100%") || !strings.Contains(strings.ToLower(full), "card") {
		t.Errorf("текст полной оплаты должен содержать 100%% и card: %q", full)
	}
	if !strings.Contains(full, "tx_42") {
		t.Errorf("текст полной оплаты должен содержать референс: %q", full)
	}

	dep := PaymentState{Kind: PaymentDepositPaid, TxnRef: "tx_43", DueOnArrival: 248}.String()
	if !strings.Contains(dep, "25%") || !strings.Contains(dep, "AED 248") {
		t.Errorf("текст депозита должен содержать 25%% и остаток: %q", dep)
	}

	if got := (PaymentState{Kind: PaymentCashPending}).String(); got != "Cash" {
		t.Errorf("текст наличной оплаты = %q, ожидалось Cash", got)
	}
}

func TestPaymentStateParseRoundTrip(t *testing.T) {
	orig := PaymentState{Kind: PaymentDepositPaid, TxnRef: "tx_77", DueOnArrival: 120}
	parsed := ParsePaymentState(orig.String())
	if parsed.Kind != PaymentDepositPaid {
		t.Fatalf("kind = %v, ожидался депозит", parsed.Kind)
	}
	if parsed.TxnRef != "tx_77" {
		t.Errorf("txnRef = %q, ожидалось tx_77", parsed.TxnRef)
	}
	if parsed.DueOnArrival != 120 {
		t.Errorf("dueOnArrival = %d, ожидалось 120", parsed.DueOnArrival)
	}

	fully := ParsePaymentState("Card 100% prepaid (txn tx_9)")
	if fully.Kind != PaymentFullyPaid || fully.TxnRef != "tx_9" {
		t.Errorf("разбор полной оплаты: %+v", fully)
	}

	// Старые строки таблицы содержали просто "Card".
	if got := ParsePaymentState("Card"); got.Kind != PaymentFullyPaid {
		t.Errorf("legacy-строка Card должна читаться как полная оплата: %+v", got)
	}
	if got := ParsePaymentState("Cash"); got.Kind != PaymentCashPending {
		t.Errorf("Cash должен читаться как ожидание наличных: %+v", got)
	}
}
