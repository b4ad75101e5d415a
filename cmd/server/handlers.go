package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/cache"
	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
	"github.com/thebartekbanach/webimage/pkg/proxy"
)

const invalidationTimeout = time.Minute

func handleRequest(ctx context.Context, proxyService proxy.ProxyService, timeout time.Duration, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		processingCtx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		request := r.URL.Path + "?" + r.URL.RawQuery
		logger.WithField("request", request).Debug("processing")

		proxyService.Handle(processingCtx, request, r.Header.Get("Origin"), &proxyResponseWriter{w})
		r.Body.Close()
	}
}

func handleInvalidationRequest(ctx context.Context, invalidationService cache.InvalidationService, rawAccessToken string, logger logrus.FieldLogger) http.HandlerFunc {
	accessToken := fmt.Sprintf("Bearer %s", rawAccessToken)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(ctx, invalidationTimeout)
		defer cancel()

		if r.Method != http.MethodDelete && r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET and DELETE methods are allowed"))
			return
		}

		if rawAccessToken != "" && r.Header.Get("Authorization") != accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("access token authorization failed"))
			return
		}

		if r.Method == http.MethodGet {
			writeLastInvalidation(ctx, w, invalidationService, logger)
			return
		}

		urls := r.URL.Query()["urls"]
		if len(urls) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("urls query parameter is required"))
			return
		}

		result, invalidationErr := invalidationService.Invalidate(ctx, urls)
		jsonResult, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			logger.WithError(marshalErr).Error("cannot marshal invalidation report")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("error ocurred when marshalling invalidated entries"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if invalidationErr != nil {
			logger.WithError(invalidationErr).Warn("invalidation stopped early")
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		w.Write(jsonResult)
	}
}

func writeLastInvalidation(ctx context.Context, w http.ResponseWriter, invalidationService cache.InvalidationService, logger logrus.FieldLogger) {
	result, err := invalidationService.GetLastKnownInvalidation(ctx)
	if errors.Is(err, cacherepositories.ErrInvalidationNotFound) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no invalidation was recorded"))
		return
	}

	if err != nil {
		logger.WithError(err).Error("cannot read last invalidation")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("cannot read last invalidation"))
		return
	}

	jsonResult, err := json.Marshal(result)
	if err != nil {
		logger.WithError(err).Error("cannot marshal invalidation report")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("error ocurred when marshalling invalidation report"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonResult)
}

type statusReport struct {
	Fetching        int64 `json:"fetching"`
	VisibleFetching int64 `json:"visibleFetching"`
	FailedURLs      int   `json:"failedUrls"`
	QueueRunning    int64 `json:"queueRunning"`
	QueueWaiting    int64 `json:"queueWaiting"`
}

func handleStatusRequest(app *application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		report := statusReport{
			Fetching:        app.manager.Activity().Count(),
			VisibleFetching: app.manager.Activity().Visible(),
			FailedURLs:      app.manager.Blacklist().Len(),
			QueueRunning:    app.queue.Running(),
			QueueWaiting:    app.queue.Waiting(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}
