package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"backend/config"
	"backend/models"
)

type RecService struct {
	client *http.Client
	token  string
	model  string
}

func NewRecService() *RecService {
	return &RecService{
		client: &http.Client{Timeout: 15 * time.Second},
		token:  os.Getenv("HUGGINGFACE_TOKEN"),
		model:  "google/flan-t5-small",
	}
}

// Summarize today's intake and ask HF for renal-diet adjustments
func (r *RecService) GetRecs(userID uint) ([]string, error) {
	if r.token == "" {
		return nil, fmt.Errorf("HUGGINGFACE_TOKEN not set")
	}

	// 1) fetch today's consumption
	var recs []models.ConsumptionRecord
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := config.DB.
		Where("user_id = ? AND consumed_at >= ?", userID, start).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("db error fetching intake: %w", err)
	}

	// 2) build prompt
	var sb bytes.Buffer
	sb.WriteString("Today's foods for a chronic kidney disease patient:\n")
	if len(recs) == 0 {
		sb.WriteString("- (nothing logged yet)\n")
	} else {
		for _, it := range recs {
			sb.WriteString(fmt.Sprintf(
				"- %s (%s): %.0f mg sodium, %.0f mg potassium, %.0f mg phosphorus\n",
				it.FoodName, it.UnitName, it.Sodium, it.Potassium, it.Phosphorus,
			))
		}
	}
	sb.WriteString("\nSuggest 3-5 practical swaps or portion changes that lower sodium, potassium and phosphorus while keeping adequate energy. Return plain bullet points.")

	// 3) call HF Inference API
	body := map[string]any{
		"inputs": sb.String(),
		"parameters": map[string]any{
			"max_new_tokens": 128,
			"temperature":    0.2,
		},
	}
	b, _ := json.Marshal(body)

	req, _ := http.NewRequest(
		"POST",
		fmt.Sprintf("https://api-inference.huggingface.co/models/%s", r.model),
		bytes.NewReader(b),
	)
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-wait-for-model", "true")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hf request error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read hf response error: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var hfErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBytes, &hfErr) == nil && hfErr.Error != "" {
			return nil, fmt.Errorf("hf api error (%d): %s", resp.StatusCode, hfErr.Error)
		}
		return nil, fmt.Errorf("hf api error (%d): %s", resp.StatusCode, string(respBytes))
	}

	var hfOut []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(respBytes, &hfOut); err != nil {
		bodyPreview := string(respBytes)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		return nil, fmt.Errorf("decode hf response error: %v | body: %s", err, bodyPreview)
	}
	if len(hfOut) == 0 || strings.TrimSpace(hfOut[0].GeneratedText) == "" {
		return nil, fmt.Errorf("empty recommendations from hf")
	}

	// split lines into bullets
	var out []string
	for _, line := range strings.Split(hfOut[0].GeneratedText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "-•* \t")
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}
