// Package embedder talks to an external face-embedding server and exposes it
// as a face.Model.
//
// Endpoints:
//
//	POST /embed/face   multipart "file" (JPEG)  -> {"faces":[...], "model": "..."}
//	GET  /health                                -> {"status":"ok","dim":128,"model":"..."}
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
)

const defaultBaseURL = "http://localhost:8000"

// Client computes face detections through the embedding server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL ("" means localhost:8000).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// faceDetection is a single face as returned by the server.
type faceDetection struct {
	Embedding []float32    `json:"embedding"`
	BBox      []float64    `json:"bbox"`
	Landmarks [][2]float64 `json:"landmarks"`
	DetScore  float64      `json:"det_score"`
}

type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// HealthInfo is the /health payload.
type HealthInfo struct {
	Status string `json:"status"`
	Dim    int    `json:"dim"`
	Model  string `json:"model"`
}

// Detect implements face.Model.
func (c *Client) Detect(ctx context.Context, frame image.Image) ([]face.Detection, error) {
	var img bytes.Buffer
	if err := jpeg.Encode(&img, frame, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", img.Bytes())
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := make([]face.Detection, 0, len(resp.Faces))
	for i, f := range resp.Faces {
		det, err := f.toDetection()
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		out = append(out, det)
	}
	return out, nil
}

func (f faceDetection) toDetection() (face.Detection, error) {
	if len(f.BBox) != 4 {
		return face.Detection{}, fmt.Errorf("bbox has %d values, want 4", len(f.BBox))
	}
	det := face.Detection{
		Descriptor: face.Descriptor(f.Embedding),
		Box:        face.Box{X1: f.BBox[0], Y1: f.BBox[1], X2: f.BBox[2], Y2: f.BBox[3]},
		Score:      f.DetScore,
	}
	if len(f.Landmarks) > 0 && len(f.Landmarks) != len(det.Landmarks) {
		return face.Detection{}, fmt.Errorf("got %d landmarks, want %d", len(f.Landmarks), len(det.Landmarks))
	}
	for i, p := range f.Landmarks {
		det.Landmarks[i] = face.Point{X: p[0], Y: p[1]}
	}
	return det, nil
}

func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Health queries /health.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var h HealthInfo
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &h, nil
}

// Loader returns a face.Loader that checks the server is reachable and
// serves descriptors of the expected dimension.
func Loader(baseURL string) face.Loader {
	return func(ctx context.Context) (face.Model, error) {
		c := NewClient(baseURL)
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		h, err := c.Health(ctx)
		if err != nil {
			return nil, err
		}
		if h.Dim != face.DescriptorSize {
			return nil, fmt.Errorf("embedding server dimension mismatch: got %d, want %d", h.Dim, face.DescriptorSize)
		}
		return c, nil
	}
}
