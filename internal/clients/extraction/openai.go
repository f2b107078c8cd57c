// Package extraction reads scanned trip sheets with an OpenAI vision model
// and returns the structured fields needed for mileage analysis.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ifta-mileage/internal/lib/states"
	"ifta-mileage/internal/lib/trip"
)

// System prompt for trip sheet extraction. The location corrections reflect
// recurring handwriting misreads in the fleet's sheets.
const SystemPrompt = `You are a document analyst extracting structured data from scanned trucking trip sheets.

Instructions:
- Read handwritten text letter by letter. Do NOT hallucinate or guess.
- If a field is not clearly visible, return an empty string.
- Locations must be "City, ST" with the comma (e.g. "Bloomington, CA").
- Use standard 2-letter state abbreviations and proper city capitalization.
- second_drop, third_drop and forth_drop are optional; leave them empty
  rather than copying values from inbound_pu or drop_off.
- drop_off may contain multiple stops separated by "to"; return them as an
  array in that case.
- total_miles comes from the OFFICE USE ONLY section; extract the number
  exactly as written.
- Dates use MM/DD/YY.

Return only a valid JSON object matching the provided schema.`

// TripSheetSchema defines the JSON schema for structured extraction output.
var TripSheetSchema = openai.ChatCompletionResponseFormatJSONSchema{
	Name:   "trip_sheet",
	Strict: true,
	Schema: json.RawMessage(`{
		"type": "object",
		"properties": {
			"drivers_name":      {"type": "string", "description": "Driver's full name exactly as written"},
			"unit":              {"type": "string", "description": "Unit number, empty if not visible"},
			"trailer":           {"type": "string", "description": "Trailer number, empty if not visible"},
			"date_trip_started": {"type": "string", "description": "Trip start date, MM/DD/YY"},
			"date_trip_ended":   {"type": "string", "description": "Trip end date, MM/DD/YY"},
			"trip":              {"type": "string", "description": "Trip number, only if explicitly written"},
			"trip_started_from": {"type": "string", "description": "Origin as City, ST"},
			"first_drop":        {"type": "string", "description": "First drop as City, ST"},
			"second_drop":       {"type": "string", "description": "Second drop as City, ST, empty if not visible"},
			"third_drop":        {"type": "string", "description": "Third drop as City, ST, empty if not visible"},
			"forth_drop":        {"type": "string", "description": "Fourth drop as City, ST, empty if not visible"},
			"inbound_pu":        {"type": "string", "description": "Inbound pickup as City, ST"},
			"drop_off": {
				"type": "array",
				"items": {"type": "string"},
				"description": "Final drop off stops as City, ST, in order"
			},
			"total_miles": {"type": "string", "description": "Total miles from OFFICE USE ONLY section, empty if not visible"},
			"fuel_purchases": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"state":   {"type": "string", "description": "2-letter state abbreviation"},
						"gallons": {"type": "string", "description": "Gallons purchased"}
					},
					"required": ["state", "gallons"],
					"additionalProperties": false
				}
			}
		},
		"required": ["drivers_name", "unit", "trailer", "date_trip_started", "date_trip_ended", "trip", "trip_started_from", "first_drop", "second_drop", "third_drop", "forth_drop", "inbound_pu", "drop_off", "total_miles", "fuel_purchases"],
		"additionalProperties": false
	}`),
}

// FuelPurchase is one fuel stop from the sheet's fuel details table.
type FuelPurchase struct {
	State   string `json:"state"`
	Gallons string `json:"gallons"`
}

// TripSheet holds the fields extracted from one scanned sheet. The odd
// "forth_drop" spelling matches the form's field naming and is kept for
// compatibility with existing exports.
type TripSheet struct {
	DriversName     string         `json:"drivers_name"`
	Unit            string         `json:"unit"`
	Trailer         string         `json:"trailer"`
	DateTripStarted string         `json:"date_trip_started"`
	DateTripEnded   string         `json:"date_trip_ended"`
	Trip            string         `json:"trip"`
	TripStartedFrom string         `json:"trip_started_from"`
	FirstDrop       string         `json:"first_drop"`
	SecondDrop      string         `json:"second_drop"`
	ThirdDrop       string         `json:"third_drop"`
	ForthDrop       string         `json:"forth_drop"`
	InboundPU       string         `json:"inbound_pu"`
	DropOff         []string       `json:"drop_off"`
	TotalMiles      string         `json:"total_miles"`
	FuelPurchases   []FuelPurchase `json:"fuel_purchases"`
}

// TotalMilesValue parses the extracted total, tolerating thousands
// separators. Returns 0 when the field is empty or unreadable.
func (s *TripSheet) TotalMilesValue() float64 {
	raw := strings.ReplaceAll(strings.TrimSpace(s.TotalMiles), ",", "")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ToWaypoints converts the sheet's location fields into the ordered waypoint
// list for analysis. Empty fields are omitted; no coordinates are attached
// yet.
func (s *TripSheet) ToWaypoints() []trip.Waypoint {
	var wps []trip.Waypoint
	add := func(label string, role trip.Role) {
		label = strings.TrimSpace(label)
		if label == "" {
			return
		}
		wps = append(wps, trip.Waypoint{
			Label: label,
			Role:  role,
			State: states.FromLocation(label),
		})
	}

	add(s.TripStartedFrom, trip.RoleOrigin)
	add(s.FirstDrop, trip.RoleDrop)
	add(s.SecondDrop, trip.RoleDrop)
	add(s.ThirdDrop, trip.RoleDrop)
	add(s.ForthDrop, trip.RoleDrop)
	add(s.InboundPU, trip.RolePickup)
	for _, stop := range s.DropOff {
		add(stop, trip.RoleDropoff)
	}
	return wps
}

// Extractor runs trip sheet extraction against the OpenAI API.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor creates an extractor. An empty API key leaves the client nil
// and every call fails, which keeps construction infallible for wiring.
func NewExtractor(apiKey, model string) *Extractor {
	if model == "" {
		model = openai.GPT4o
	}
	if apiKey == "" {
		return &Extractor{client: nil, model: model}
	}
	return &Extractor{client: openai.NewClient(apiKey), model: model}
}

// ExtractSheet reads one trip sheet image, provided as a data URL or a
// fetchable HTTPS URL.
func (e *Extractor) ExtractSheet(ctx context.Context, imageURL string) (*TripSheet, error) {
	if e.client == nil {
		return nil, errors.New("OpenAI client not initialized, missing API key")
	}
	if imageURL == "" {
		return nil, errors.New("empty image URL")
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract the trip sheet fields from this scan.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type:       openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &TripSheetSchema,
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI API")
	}

	var sheet TripSheet
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI JSON response: %w", err)
	}

	return &sheet, nil
}
