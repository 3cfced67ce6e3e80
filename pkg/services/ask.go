package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/intent"
	"github.com/datachat-labs/datachat-engine/pkg/llm"
	"github.com/datachat-labs/datachat-engine/pkg/logging"
	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/prompts"
	"github.com/datachat-labs/datachat-engine/pkg/relevance"
	"github.com/datachat-labs/datachat-engine/pkg/repositories"
	"github.com/datachat-labs/datachat-engine/pkg/retry"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
	"github.com/datachat-labs/datachat-engine/pkg/shaper"
	"github.com/datachat-labs/datachat-engine/pkg/sqlrepair"
)

// AskRequest is one natural-language question, optionally pinned to a table.
type AskRequest struct {
	Query     string `json:"query"`
	TableName string `json:"table_name,omitempty"`
}

// AskService answers natural-language questions against uploaded datasets.
type AskService interface {
	Ask(ctx context.Context, req *AskRequest) (*models.AskResponse, error)
}

type askService struct {
	datasets   repositories.DatasetRepository
	store      repositories.TableStore
	selector   *relevance.Selector
	classifier *intent.Classifier
	generator  llm.SQLGenerator
	repairer   *sqlrepair.Engine
	shaper     *shaper.Shaper
	history    repositories.SavedQueryRepository
	logger     *zap.Logger
}

// NewAskService wires the full question-answering pipeline.
func NewAskService(
	datasets repositories.DatasetRepository,
	store repositories.TableStore,
	selector *relevance.Selector,
	classifier *intent.Classifier,
	generator llm.SQLGenerator,
	repairer *sqlrepair.Engine,
	sh *shaper.Shaper,
	history repositories.SavedQueryRepository,
	logger *zap.Logger,
) AskService {
	return &askService{
		datasets:   datasets,
		store:      store,
		selector:   selector,
		classifier: classifier,
		generator:  generator,
		repairer:   repairer,
		shaper:     sh,
		history:    history,
		logger:     logger,
	}
}

// Ask runs one question through the pipeline: table selection, profiling,
// intent classification, SQL generation, repair, bounded execution, and
// result shaping. History persistence is best-effort.
func (s *askService) Ask(ctx context.Context, req *AskRequest) (*models.AskResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	tableName, err := s.resolveTable(ctx, query, req.TableName)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.TableProfile(ctx, tableName)
	if err != nil {
		return nil, err
	}

	canonical, err := schema.NormalizeInferred(profile.Columns)
	if err != nil {
		return nil, err
	}

	intents := s.classifier.Classify(query, canonical)
	s.logger.Debug("Classified query intents",
		zap.String("table", tableName),
		zap.Strings("intents", intent.Names(intents)))

	prompt := prompts.BuildSQLGenerationPrompt(tableName, canonical, profile.SampleRows, intents, query)

	// Only the model call is retried; execution failures are final.
	rawSQL, err := retry.DoWithResult(ctx, nil, func() (string, error) {
		return s.generator.GenerateSQL(ctx, prompts.SQLSystemMessage, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("sql generation failed: %w", err)
	}

	repaired, err := s.repairer.Repair(&sqlrepair.Context{
		Schema:    canonical,
		TableName: tableName,
		Intents:   intents,
		UserQuery: query,
	}, rawSQL)
	if err != nil {
		return nil, err
	}

	columns, rows, err := s.store.ExecuteQuery(ctx, repaired)
	if err != nil {
		return nil, err
	}

	answer, chart := s.shaper.Shape(query, columns, rows)

	s.saveHistory(ctx, tableName, query, repaired, len(rows))

	return &models.AskResponse{
		Answer:        answer,
		FilteredData:  rows,
		ChartData:     chart,
		SQLQuery:      repaired,
		OriginalQuery: query,
	}, nil
}

// resolveTable uses the caller's table when given, otherwise runs relevance
// selection over the catalog.
func (s *askService) resolveTable(ctx context.Context, query, requested string) (string, error) {
	if requested != "" {
		if _, err := s.datasets.GetByTableName(ctx, requested); err != nil {
			return "", err
		}
		return requested, nil
	}

	tables, err := s.datasets.TableNames(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list candidate tables: %w", err)
	}
	return s.selector.Select(ctx, query, tables)
}

// saveHistory records the answered question. Failures are logged, never
// surfaced - history is not part of the answer contract.
func (s *askService) saveHistory(ctx context.Context, tableName, query, sql string, rowCount int) {
	err := s.history.Create(ctx, &models.SavedQuery{
		TableName:     tableName,
		OriginalQuery: query,
		SQLQuery:      sql,
		RowCount:      rowCount,
	})
	if err != nil {
		s.logger.Warn("Failed to save query history",
			zap.String("table", tableName),
			zap.String("sql", logging.TruncateQuery(sql)),
			zap.Error(err))
	}
}
