package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/testhall/config"
	"github.com/lshigami/testhall/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeminiLLMService writes feedback on free-text answers. It never scores.
type GeminiLLMService interface {
	Enabled() bool
	WritingFeedback(ctx context.Context, question *model.Question, canonical, userAnswer string) (string, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	generativeModel := client.GenerativeModel(cfg.Gemini.Model)
	return &geminiLLMService{client: generativeModel, cfg: cfg}, nil
}

func (s *geminiLLMService) Enabled() bool { return s.client != nil }

var imageHTTPClient = &http.Client{Timeout: 15 * time.Second}

func fetchImageData(ctx context.Context, imageURL string) ([]byte, string, error) {
	if imageURL == "" {
		return nil, "", fmt.Errorf("image URL is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image URL %s: %w", imageURL, err)
	}
	resp, err := imageHTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image from URL %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch image (status %d) from URL %s", resp.StatusCode, imageURL)
	}
	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data from URL %s: %w", imageURL, err)
	}

	var mimeType string
	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		parsedMime, _, parseErr := mime.ParseMediaType(contentType)
		if parseErr == nil && strings.HasPrefix(parsedMime, "image/") {
			mimeType = parsedMime
		}
	}
	if mimeType == "" {
		ext := filepath.Ext(imageURL)
		mimeType = mime.TypeByExtension(ext)
		if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
			return imageData, "", fmt.Errorf("unsupported or undeterminable image MIME type for %s", imageURL)
		}
	}
	return imageData, mimeType, nil
}

// buildFeedbackPrompt asks for feedback only; the answer has already been
// graded by exact comparison with the canonical answer.
func buildFeedbackPrompt(question *model.Question, canonical, userAnswer string, hasImage bool) string {
	var b strings.Builder
	b.WriteString("You are a teacher reviewing a student's short written answer.\n")
	if hasImage {
		b.WriteString("The student was shown the image provided above.\n")
	}
	b.WriteString("Question:\n---\n")
	b.WriteString(question.Text)
	b.WriteString("\n---\n")
	if canonical != "" {
		b.WriteString("Expected answer:\n---\n")
		b.WriteString(canonical)
		b.WriteString("\n---\n")
	}
	b.WriteString("Student's answer:\n---\n")
	b.WriteString(userAnswer)
	b.WriteString("\n---\n\n")
	b.WriteString(`Give short, constructive feedback in at most five sentences:
- say whether the answer means the same as the expected answer,
- point out spelling or grammar mistakes with a corrected version,
- do not give a score.
`)
	return b.String()
}

func (s *geminiLLMService) WritingFeedback(ctx context.Context, question *model.Question, canonical, userAnswer string) (string, error) {
	if s.client == nil {
		return "", ErrFeedbackDisabled
	}

	var parts []genai.Part
	hasImage := false
	if question.ImageURL != nil && *question.ImageURL != "" {
		imageData, mimeType, err := fetchImageData(ctx, *question.ImageURL)
		if err != nil {
			log.Warn().Err(err).Str("imageURL", *question.ImageURL).Msg("WritingFeedback: Failed to fetch image, continuing with text only")
		} else {
			parts = append(parts, genai.ImageData(strings.TrimPrefix(mimeType, "image/"), imageData))
			hasImage = true
		}
	}
	parts = append(parts, genai.Text(buildFeedbackPrompt(question, canonical, userAnswer, hasImage)))

	resp, err := s.client.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error().Err(err).Uint("questionID", question.ID).Msg("WritingFeedback: Gemini API error")
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	feedback := strings.TrimSpace(text.String())
	if feedback == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return feedback, nil
}
