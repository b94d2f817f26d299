package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model to use for clothing analysis.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

// ClothingProfile is the structured result of a clothing photo analysis.
type ClothingProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"` // top, bottom, shoes, accessory, jewellery, full_body
	Style       string `json:"style"`    // casual, formal, party, traditional
	Type        string `json:"type"`     // watch, belt, open, closed...
	Material    string `json:"material"` // leather, metal, fabric...
}

type StylistLLMProvider interface {
	DescribeClothing(filePath string, modelName LLMModelName) (*ClothingProfile, error)
}

type GoogleStylistLLM struct{}

const clothingSystemPrompt = `You are a fashion catalog assistant. Analyze the single clothing item in the image and respond with ONLY a JSON object, no markdown fences:
{"name": "short display name like Navy Shirt", "description": "one sentence styling description", "category": "one of top|bottom|shoes|accessory|jewellery|full_body", "style": "one of casual|formal|party|traditional", "type": "subtype like watch, belt, ring, necklace, open, closed, or empty", "material": "leather, metal, fabric, or empty"}
If no clothing item is visible return {"name": "NO_ITEM"}.`

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string, newName *string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		config := &genai.UploadFileConfig{}
		if newName != nil {
			config = &genai.UploadFileConfig{
				Name: *newName,
			}
		}

		genFile, err = client.Files.UploadFromPath(ctx, filePath, config)
		if err == nil {

			fmt.Println("File uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage after %d attempts: %s", maxUploadTimes, filePath)
}

func getFirstCandidateText(result *genai.GenerateContentResponse) (string, error) {
	for _, c := range result.Candidates {
		fmt.Println("Finish reason: ", c.FinishReason, " Finish message: ", c.FinishMessage)

		if len(c.SafetyRatings) > 0 {
			for _, rating := range c.SafetyRatings {
				fmt.Println("[Safety] rating:", rating.Category, "Score:", rating.Probability, " Blocked:", rating.Blocked)
				if rating.Blocked {
					return "", fmt.Errorf("content violation: couldn't analyze the photo, because it contains %s", rating.Category)
				}
			}
		}
	}
	return result.Text(), nil
}

func (GoogleStylistLLM) DescribeClothing(filePath string, modelName LLMModelName) (*ClothingProfile, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %v", err)
	}

	genFile, err := tryUploadGoogleStorage(ctx, client, filePath, nil)
	if err != nil {
		fmt.Println("Error uploading clothing file:", filePath, err)
		return nil, fmt.Errorf("error uploading clothing file %s: %v", filePath, err)
	}

	parts := []*genai.Part{
		{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		},
		{
			Text: "Analyze this clothing item.",
		},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		MaxOutputTokens: 2000,
		Temperature:     floatPointer(0.2),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: clothingSystemPrompt},
			},
		},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.UsageMetadata != nil {
		fmt.Println("Input token count:", result.UsageMetadata.PromptTokenCount)
		fmt.Println("Output token count:", result.UsageMetadata.CandidatesTokenCount)
	}
	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s %s", filePath, result.PromptFeedback.BlockReasonMessage)
	}

	text, err := getFirstCandidateText(result)
	if err != nil {
		return nil, err
	}

	profile, err := ParseClothingProfile(text)
	if err != nil {
		return nil, err
	}
	if profile.Name == "NO_ITEM" {
		return nil, fmt.Errorf("no clothing item detected in %s", filePath)
	}
	return profile, nil
}

// ParseClothingProfile tolerates markdown fences some models still wrap
// around JSON despite the prompt.
func ParseClothingProfile(text string) (*ClothingProfile, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var profile ClothingProfile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return nil, fmt.Errorf("failed to parse clothing profile: %v, raw: %s", err, text)
	}
	return &profile, nil
}
