package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quizis-session-service/internal/domain"
)

// TriviaClient talks to an Open Trivia DB compatible HTTP API. Provider text
// arrives HTML-entity-escaped; the client decodes it once at ingestion so the
// rest of the service compares and renders plain text.
type TriviaClient struct {
	baseURL string
	client  *http.Client
}

func NewTriviaClient(baseURL string, timeout time.Duration) *TriviaClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TriviaClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type categoryListResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

type questionListResponse struct {
	ResponseCode int              `json:"response_code"`
	Results      []questionRecord `json:"results"`
}

type questionRecord struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Difficulty       string   `json:"difficulty"`
}

// ListCategories fetches the category listing. Network and parse failures
// surface as domain.ErrProviderUnavailable.
func (c *TriviaClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var parsed categoryListResponse
	if err := c.getJSON(ctx, c.baseURL+"/api_category.php", &parsed); err != nil {
		return nil, err
	}
	return parsed.TriviaCategories, nil
}

// FetchQuestions fetches questions for the requested configuration. An empty
// result list is a valid response, returned as-is; the session controller
// decides whether that is acceptable.
func (c *TriviaClient) FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(req.Amount))
	params.Set("category", strconv.Itoa(req.Category))
	params.Set("difficulty", req.Difficulty)

	var parsed questionListResponse
	if err := c.getJSON(ctx, c.baseURL+"/api.php?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(parsed.Results))
	for _, record := range parsed.Results {
		questions = append(questions, decodeQuestion(record))
	}
	return questions, nil
}

func (c *TriviaClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrProviderUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrProviderUnavailable, err)
	}
	return nil
}

func decodeQuestion(record questionRecord) domain.Question {
	incorrect := make([]string, len(record.IncorrectAnswers))
	for i, answer := range record.IncorrectAnswers {
		incorrect[i] = html.UnescapeString(answer)
	}
	return domain.Question{
		Text:             html.UnescapeString(record.Question),
		CorrectAnswer:    html.UnescapeString(record.CorrectAnswer),
		IncorrectAnswers: incorrect,
		Difficulty:       record.Difficulty,
	}
}
