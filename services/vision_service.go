package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"backend/models"
	"backend/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// DetectionResult is what the upstream image analysis hands the engine:
// generic food terms plus an optional whole-dish nutrient estimate.
type DetectionResult struct {
	DetectedTerms []string               `json:"detectedTerms"`
	AITotals      *models.NutrientTotals `json:"aiTotals"`
	DishName      string                 `json:"dishName,omitempty"`
}

type VisionService struct {
	client *rekognition.Client
}

func NewVisionService() *VisionService {
	return &VisionService{client: utils.RekClient()}
}

// DetectFoodTerms returns food label names for a base64-encoded image
func (v *VisionService) DetectFoodTerms(base64Img string) ([]string, error) {
	idx := strings.Index(base64Img, ",")
	if idx < 0 || !strings.HasPrefix(base64Img, "data:image") {
		return nil, errors.New("invalid data URI")
	}
	data, err := base64.StdEncoding.DecodeString(base64Img[idx+1:])
	if err != nil {
		return nil, err
	}

	out, err := v.client.DetectLabels(context.TODO(), &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(70),
	})
	if err != nil {
		return nil, err
	}

	var terms []string
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		// skip scene-level labels that never name a food
		switch strings.ToLower(name) {
		case "food", "meal", "dish", "plate", "cutlery", "table", "person":
			continue
		}
		terms = append(terms, strings.ToLower(name))
	}
	return terms, nil
}

// Detect runs label detection and pairs it with the whole-dish estimate
// the mobile client may have obtained upstream. aiTotalsJSON may be empty.
func (v *VisionService) Detect(base64Img string, aiTotalsJSON []byte) (*DetectionResult, error) {
	terms, err := v.DetectFoodTerms(base64Img)
	if err != nil {
		return nil, err
	}
	res := &DetectionResult{DetectedTerms: terms}
	if len(aiTotalsJSON) > 0 {
		var totals models.NutrientTotals
		if err := json.Unmarshal(aiTotalsJSON, &totals); err == nil {
			totals.Source = models.SourceAIEstimate
			res.AITotals = &totals
		}
	}
	return res, nil
}
