package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// PayloadUploader uploads export files. Uploader is the production implementation.
type PayloadUploader interface {
	Upload(ctx context.Context, req domain.UploadRequest) (domain.UploadResult, error)
}

// Ensure Uploader implements the interface.
var _ PayloadUploader = (*Uploader)(nil)

// tokenSource records where the token for an attempt came from.
type tokenSource int

const (
	tokenNone tokenSource = iota
	tokenExplicit
	tokenCached
	tokenLogin
)

// Uploader resolves a credential token, uploads a payload and handles a
// single re-authentication when a cached token has expired.
type Uploader struct {
	remote driven.RemoteClient
	cache  driven.TokenCache
}

// NewUploader creates an uploader. cache may be nil.
func NewUploader(remote driven.RemoteClient, cache driven.TokenCache) *Uploader {
	return &Uploader{
		remote: remote,
		cache:  cache,
	}
}

// Upload sends the files in req.
//
// The token is resolved as explicit > cached > login. With no token the
// result is skipped with reason "no token". When the remote rejects a cached
// token, the cache is cleared and the upload is retried exactly once with a
// freshly logged-in token.
func (u *Uploader) Upload(ctx context.Context, req domain.UploadRequest) (domain.UploadResult, error) {
	if len(req.Files) == 0 {
		return domain.UploadResult{Skipped: true, Reason: domain.ReasonNoFiles}, nil
	}

	payload, err := BuildPayload(req.Files)
	if err != nil {
		return domain.UploadResult{}, err
	}

	token, source, err := u.resolveToken(ctx, req)
	if err != nil {
		return domain.UploadResult{PayloadHash: payload.Hash}, err
	}
	if token == "" {
		logger.Info("No API token available, skipping upload")
		return domain.UploadResult{Skipped: true, Reason: domain.ReasonNoToken, PayloadHash: payload.Hash}, nil
	}

	retried := false
	for {
		resp, err := u.remote.Upload(ctx, token, payload)
		if err == nil {
			return classifyResponse(resp, payload.Hash), nil
		}

		unauthorized := errors.Is(err, domain.ErrUnauthorized)
		if unauthorized && source != tokenExplicit {
			u.invalidate()
		}
		if !unauthorized || source != tokenCached || retried {
			return domain.UploadResult{PayloadHash: payload.Hash}, fmt.Errorf("upload: %w", err)
		}

		retried = true
		logger.Info("Cached token rejected, logging in again")
		fresh, loginErr := u.login(ctx, req.Credentials)
		if loginErr != nil {
			return domain.UploadResult{PayloadHash: payload.Hash}, loginErr
		}
		if fresh == "" {
			return domain.UploadResult{PayloadHash: payload.Hash},
				fmt.Errorf("upload: %w (no login credentials to refresh the token)", err)
		}
		token, source = fresh, tokenLogin
	}
}

// resolveToken picks the token for the first attempt.
func (u *Uploader) resolveToken(ctx context.Context, req domain.UploadRequest) (string, tokenSource, error) {
	if req.Token != "" {
		return req.Token, tokenExplicit, nil
	}
	if u.cache != nil {
		if token := u.cache.Load(); token != "" {
			return token, tokenCached, nil
		}
	}
	token, err := u.login(ctx, req.Credentials)
	if err != nil {
		return "", tokenNone, err
	}
	if token == "" {
		return "", tokenNone, nil
	}
	return token, tokenLogin, nil
}

// login obtains a fresh token and caches it. Missing credentials yield "".
func (u *Uploader) login(ctx context.Context, creds domain.Credentials) (string, error) {
	if !creds.IsSet() {
		return "", nil
	}
	token, err := u.remote.Login(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if token != "" && u.cache != nil {
		if err := u.cache.Save(token); err != nil {
			logger.Error("caching token at %s: %v", u.cache.Path(), err)
		}
	}
	return token, nil
}

// invalidate drops the cached token.
func (u *Uploader) invalidate() {
	if u.cache == nil {
		return
	}
	if err := u.cache.Clear(); err != nil {
		logger.Error("clearing token cache at %s: %v", u.cache.Path(), err)
	}
}

// classifyResponse maps the remote answer onto an upload result. The remote
// is the authority on duplicates and reports them as skipped.
func classifyResponse(resp *domain.RemoteResponse, hash string) domain.UploadResult {
	if resp == nil {
		return domain.UploadResult{Status: domain.RemoteStatusOK, PayloadHash: hash}
	}
	if resp.PayloadHash != "" {
		hash = resp.PayloadHash
	}
	if resp.Status == domain.RemoteStatusSkipped {
		reason := resp.Reason
		if reason == "" {
			reason = domain.ReasonDuplicate
		}
		return domain.UploadResult{
			Skipped:     true,
			Reason:      reason,
			Status:      resp.Status,
			PayloadHash: hash,
			Message:     resp.Message,
		}
	}
	return domain.UploadResult{
		Status:      resp.Status,
		PayloadHash: hash,
		Message:     resp.Message,
	}
}

// BuildPayload reads files in order and fingerprints them with SHA-256 over
// their concatenated contents.
func BuildPayload(files []string) (domain.Payload, error) {
	h := sha256.New()
	payload := domain.Payload{Files: make([]domain.PayloadFile, 0, len(files))}

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return domain.Payload{}, fmt.Errorf("read %s: %w", path, err)
		}
		h.Write(content)
		payload.Files = append(payload.Files, domain.PayloadFile{
			Name:    filepath.Base(path),
			Content: content,
		})
	}

	payload.Hash = hex.EncodeToString(h.Sum(nil))
	return payload, nil
}
