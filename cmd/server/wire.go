//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/config"
)

func InitializeApplication(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*application, func(), error) {
	wire.Build(applicationSet)

	return &application{}, nil, nil
}
