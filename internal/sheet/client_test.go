package sheet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

func TestReadAllParsesRowsAndBustsCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") == "" {
			t.Error("запрос без параметра t")
		}
		if r.Method != http.MethodGet {
			t.Errorf("метод %s, ожидался GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"Source":"Web-1","Status":"Pending","Price":"315"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rows, err := client.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ожидалась 1 строка, получено %d", len(rows))
	}
	if got := rows[0].Get(models.FieldRef, ""); got != "Web-1" {
		t.Errorf("Source = %q", got)
	}
	if got := rows[0].GetInt(models.FieldPrice, 0); got != 315 {
		t.Errorf("Price = %d", got)
	}
}

func TestReadAllRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.ReadAll(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка при статусе 502")
	}
}

func TestAppendSendsRowEnvelope(t *testing.T) {
	var got struct {
		Data []models.Row `json:"data"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("метод %s, ожидался POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("декодирование тела: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	row := models.Row{"Source": "Web-1", "Status": "Pending"}
	if err := client.Append(context.Background(), row); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(got.Data) != 1 {
		t.Fatalf("ожидалась 1 строка в конверте, получено %d", len(got.Data))
	}
	if got.Data[0]["Source"] != "Web-1" {
		t.Errorf("Source = %v", got.Data[0]["Source"])
	}
}

func TestUpdateSendsActionEnvelope(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("декодирование тела: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	row := models.Row{"Source": "Web-1", "Status": "Host Confirmed"}
	if err := client.Update(context.Background(), row); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got["action"] != "update" {
		t.Errorf("action = %v", got["action"])
	}
}

func TestWriteFailureIsSubmissionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	server.Close() // Транспортная ошибка: сервер уже закрыт

	client := NewClient(server.URL)
	err := client.Append(context.Background(), models.Row{"Source": "Web-1"})
	if !domain.IsSubmissionFailed(err) {
		t.Errorf("ожидалась SubmissionFailedError, получено %v", err)
	}

	err = client.Update(context.Background(), models.Row{"Source": "Web-1"})
	if !domain.IsSubmissionFailed(err) {
		t.Errorf("ожидалась SubmissionFailedError, получено %v", err)
	}
}
