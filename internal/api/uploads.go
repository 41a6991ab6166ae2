package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// File is a file to upload.
type File struct {
	Name string
	Body io.Reader
}

// UploadImage uploads a single image.
func (c *Client) UploadImage(ctx context.Context, f File) (*Upload, error) {
	var upload Upload
	if err := c.doMultipart(ctx, "/uploads/image", "image", []File{f}, &upload); err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	return &upload, nil
}

// UploadImages uploads several images in one request.
func (c *Client) UploadImages(ctx context.Context, files []File) ([]Upload, error) {
	var resp struct {
		Files []Upload `json:"files"`
	}
	if err := c.doMultipart(ctx, "/uploads/images", "images", files, &resp); err != nil {
		return nil, fmt.Errorf("uploading images: %w", err)
	}
	return resp.Files, nil
}

// UploadVideo uploads a single video.
func (c *Client) UploadVideo(ctx context.Context, f File) (*Upload, error) {
	var upload Upload
	if err := c.doMultipart(ctx, "/uploads/video", "video", []File{f}, &upload); err != nil {
		return nil, fmt.Errorf("uploading video: %w", err)
	}
	return &upload, nil
}

// UploadFromURL asks the server to fetch and store a remote file.
func (c *Client) UploadFromURL(ctx context.Context, remoteURL string) (*Upload, error) {
	req := struct {
		URL string `json:"url"`
	}{URL: remoteURL}

	var upload Upload
	if err := c.doRequest(ctx, http.MethodPost, "/uploads/url", nil, req, &upload); err != nil {
		return nil, fmt.Errorf("uploading from url: %w", err)
	}
	return &upload, nil
}

// doMultipart posts files as a multipart form under field.
func (c *Client) doMultipart(ctx context.Context, endpoint, field string, files []File, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
