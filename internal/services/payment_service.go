package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/fare"
	"github.com/sadid-rahin/luxury-comfort/internal/middleware"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

// PaymentGateway - контракт платежного шлюза: создать намерение платежа на
// сумму и подтвердить его картой. Провайдер непрозрачен для остального кода.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountAED int, reference string) (clientSecret string, err error)
	Confirm(ctx context.Context, clientSecret string, card CardDetails, billingName, billingEmail string) (txnID string, err error)
}

// CardDetails - данные карты, передаются в шлюз как есть.
type CardDetails struct {
	Number   string `json:"number"`
	ExpMonth string `json:"expMonth"`
	ExpYear  string `json:"expYear"`
	CVC      string `json:"cvc"`
}

// Validate проверяет форму данных карты до обращения к шлюзу.
func (c CardDetails) Validate() error {
	digits := strings.ReplaceAll(strings.TrimSpace(c.Number), " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		return domain.ValidationError{Field: "card.number", Msg: "некорректный номер карты"}
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return domain.ValidationError{Field: "card.number", Msg: "номер карты содержит нецифровые символы"}
		}
	}
	if c.ExpMonth == "" || c.ExpYear == "" {
		return domain.ValidationError{Field: "card.expiry", Msg: "не указан срок действия карты"}
	}
	if len(c.CVC) < 3 || len(c.CVC) > 4 {
		return domain.ValidationError{Field: "card.cvc", Msg: "некорректный CVC"}
	}
	return nil
}

// PaymentService ходит в платежный шлюз по HTTP.
type PaymentService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPaymentService() *PaymentService {
	return &PaymentService{
		apiKey:     os.Getenv("PAYMENT_API_KEY"),
		baseURL:    os.Getenv("PAYMENT_API_URL"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// intentResponse - ответ шлюза на создание намерения платежа.
type intentResponse struct {
	ClientSecret string `json:"client_secret"`
	Error        string `json:"error,omitempty"`
}

// confirmResponse - ответ шлюза на подтверждение платежа.
type confirmResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// CreateIntent создает намерение платежа на указанную сумму.
func (s *PaymentService) CreateIntent(ctx context.Context, amountAED int, reference string) (string, error) {
	payload := map[string]interface{}{
		"amount":    amountAED,
		"currency":  "AED",
		"reference": reference,
	}

	var result intentResponse
	if err := s.post(ctx, "/v1/intents", payload, &result); err != nil {
		middleware.TrackGatewayRequest("create_intent", "error")
		return "", err
	}

	if result.Error != "" {
		middleware.TrackGatewayRequest("create_intent", "declined")
		return "", domain.PaymentDeclinedError{Reason: result.Error}
	}
	if result.ClientSecret == "" {
		middleware.TrackGatewayRequest("create_intent", "error")
		return "", domain.GatewayUnavailableError{Err: fmt.Errorf("шлюз не вернул client_secret")}
	}

	middleware.TrackGatewayRequest("create_intent", "ok")
	return result.ClientSecret, nil
}

// Confirm подтверждает платеж картой и возвращает референс транзакции.
func (s *PaymentService) Confirm(ctx context.Context, clientSecret string, card CardDetails, billingName, billingEmail string) (string, error) {
	payload := map[string]interface{}{
		"client_secret": clientSecret,
		"card":          card,
		"billing_name":  billingName,
		"billing_email": billingEmail,
	}

	var result confirmResponse
	if err := s.post(ctx, "/v1/confirm", payload, &result); err != nil {
		middleware.TrackGatewayRequest("confirm", "error")
		return "", err
	}

	if !result.Success {
		middleware.TrackGatewayRequest("confirm", "declined")
		reason := result.Error
		if reason == "" {
			reason = "карта отклонена"
		}
		return "", domain.PaymentDeclinedError{Reason: reason}
	}

	middleware.TrackGatewayRequest("confirm", "ok")
	return result.TransactionID, nil
}

// post отправляет запрос в шлюз. Любая транспортная ошибка трактуется как
// недоступность шлюза: бронь в этом случае не отправляется.
func (s *PaymentService) post(ctx context.Context, path string, payload interface{}, result interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка при маршалинге данных: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.GatewayUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.GatewayUnavailableError{Err: err}
	}

	if resp.StatusCode >= 500 {
		return domain.GatewayUnavailableError{Err: fmt.Errorf("шлюз вернул статус %d", resp.StatusCode)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return domain.GatewayUnavailableError{Err: fmt.Errorf("ошибка при декодировании ответа шлюза: %w", err)}
	}

	return nil
}

// ChargeBooking решает сумму списания и проводит платеж для выбранного
// способа оплаты. Наличные не трогают шлюз. Сумма депозита и остаток берутся
// из одной и той же разбивки, независимого пересчета нет - иначе показанная
// гостю сумма разойдется со списанной.
func ChargeBooking(ctx context.Context, gateway PaymentGateway, breakdown fare.Breakdown, method models.PaymentMethod, card CardDetails, billingName, billingEmail string) (models.PaymentState, error) {
	if !method.IsCardLike() {
		return models.PaymentState{Kind: models.PaymentCashPending}, nil
	}

	if err := card.Validate(); err != nil {
		return models.PaymentState{}, err
	}

	amount := breakdown.ChargeAmount(method)
	if amount <= 0 {
		return models.PaymentState{}, domain.ValidationError{Field: "price", Msg: "нулевая сумма к списанию"}
	}

	reference := uuid.New().String()
	clientSecret, err := gateway.CreateIntent(ctx, amount, reference)
	if err != nil {
		return models.PaymentState{}, err
	}

	txnID, err := gateway.Confirm(ctx, clientSecret, card, billingName, billingEmail)
	if err != nil {
		return models.PaymentState{}, err
	}

	if method == models.PaymentMethodDeposit {
		return models.PaymentState{
			Kind:         models.PaymentDepositPaid,
			TxnRef:       txnID,
			DueOnArrival: breakdown.DueOnArrival,
		}, nil
	}
	return models.PaymentState{Kind: models.PaymentFullyPaid, TxnRef: txnID}, nil
}
