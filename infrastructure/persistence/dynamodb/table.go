package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"clubhub-backend/infrastructure/persistence/abstractions"
	"clubhub-backend/pkg/observability"
)

// API is the subset of the DynamoDB client used by Table
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// BreakerConfig tunes the circuit breaker around DynamoDB calls
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are configured
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// TableConfig names the table and its secondary indexes
type TableConfig struct {
	TableName string
	GSI1Name  string
	GSI2Name  string
	Breaker   BreakerConfig
}

// Table implements abstractions.Table on DynamoDB
type Table struct {
	client  API
	config  TableConfig
	breaker *gobreaker.CircuitBreaker
	tracer  *observability.Tracer
	logger  *zap.Logger
}

// NewTable creates a DynamoDB-backed table
func NewTable(client API, config TableConfig, logger *zap.Logger) *Table {
	if config.GSI1Name == "" {
		config.GSI1Name = "GSI1"
	}
	if config.GSI2Name == "" {
		config.GSI2Name = "GSI2"
	}
	if config.Breaker.MaxRequests == 0 {
		config.Breaker = DefaultBreakerConfig()
	}
	bc := config.Breaker

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dynamodb:" + config.TableName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Failed conditions and cancelled requests say nothing about table health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, abstractions.ErrConditionFailed) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &Table{
		client:  client,
		config:  config,
		breaker: breaker,
		tracer:  observability.NewTracer("clubhub/dynamodb"),
		logger:  logger,
	}
}

func (t *Table) indexName(i abstractions.Index) *string {
	switch i {
	case abstractions.IndexGSI1:
		return aws.String(t.config.GSI1Name)
	case abstractions.IndexGSI2:
		return aws.String(t.config.GSI2Name)
	}
	return nil
}

// call runs fn through tracing and the circuit breaker, mapping errors
func (t *Table) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	return t.tracer.TraceFunction(ctx, "dynamodb."+operation, func(ctx context.Context) error {
		_, err := t.breaker.Execute(func() (interface{}, error) {
			return nil, mapError(fn(ctx))
		})
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			t.logger.Error("DynamoDB call rejected by circuit breaker",
				zap.String("operation", operation),
				zap.Error(err),
			)
			return fmt.Errorf("dynamodb %s: %w", operation, err)
		case err != nil && !errors.Is(err, abstractions.ErrConditionFailed):
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				t.logger.Warn("DynamoDB call failed",
					zap.String("operation", operation),
					zap.String("error_code", apiErr.ErrorCode()),
					zap.Error(err),
				)
			}
		}
		return err
	},
		attribute.String("db.system", "dynamodb"),
		attribute.String("db.operation", operation),
		attribute.String("db.name", t.config.TableName),
	)
}

// mapError folds condition failures into abstractions.ErrConditionFailed
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%w: %s", abstractions.ErrConditionFailed, ccf.ErrorMessage())
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return fmt.Errorf("%w: %s", abstractions.ErrConditionFailed, tce.ErrorMessage())
			}
		}
	}
	return err
}

func conditionExpression(cond abstractions.Condition, expect []abstractions.Filter) (*expression.ConditionBuilder, bool) {
	var (
		c   expression.ConditionBuilder
		set bool
	)
	switch cond {
	case abstractions.ConditionNotExists:
		c, set = expression.AttributeNotExists(expression.Name(abstractions.AttrPK)), true
	case abstractions.ConditionExists:
		c, set = expression.AttributeExists(expression.Name(abstractions.AttrPK)), true
	}
	for _, f := range expect {
		eq := expression.Name(f.Name).Equal(expression.Value(f.Value))
		if !set {
			c, set = eq, true
			continue
		}
		c = c.And(eq)
	}
	if !set {
		return nil, false
	}
	return &c, true
}

// Get performs a strongly consistent point read
func (t *Table) Get(ctx context.Context, key abstractions.Key, projection ...string) (abstractions.Item, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(t.config.TableName),
		Key:            key.Item(),
		ConsistentRead: aws.Bool(true),
	}
	if len(projection) > 0 {
		names := make([]expression.NameBuilder, 0, len(projection)-1)
		for _, p := range projection[1:] {
			names = append(names, expression.Name(p))
		}
		expr, err := expression.NewBuilder().
			WithProjection(expression.NamesList(expression.Name(projection[0]), names...)).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}
		input.ProjectionExpression = expr.Projection()
		input.ExpressionAttributeNames = expr.Names()
	}

	var item abstractions.Item
	err := t.call(ctx, "GetItem", func(ctx context.Context) error {
		out, err := t.client.GetItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.Item) > 0 {
			item = out.Item
		}
		return nil
	})
	return item, err
}

// Put writes a whole item
func (t *Table) Put(ctx context.Context, item abstractions.Item, cond abstractions.Condition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(t.config.TableName),
		Item:      item,
	}
	if c, ok := conditionExpression(cond, nil); ok {
		expr, err := expression.NewBuilder().WithCondition(*c).Build()
		if err != nil {
			return fmt.Errorf("failed to build condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}
	return t.call(ctx, "PutItem", func(ctx context.Context) error {
		_, err := t.client.PutItem(ctx, input)
		return err
	})
}

// Update sets the given attributes, returning ALL_NEW
func (t *Table) Update(ctx context.Context, key abstractions.Key, set map[string]interface{}, cond abstractions.Condition) (abstractions.Item, error) {
	if len(set) == 0 {
		return nil, errors.New("update requires at least one attribute")
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for i, name := range names {
		if i == 0 {
			update = expression.Set(expression.Name(name), expression.Value(set[name]))
			continue
		}
		update = update.Set(expression.Name(name), expression.Value(set[name]))
	}

	builder := expression.NewBuilder().WithUpdate(update)
	if c, ok := conditionExpression(cond, nil); ok {
		builder = builder.WithCondition(*c)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.config.TableName),
		Key:                       key.Item(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	}

	var item abstractions.Item
	err = t.call(ctx, "UpdateItem", func(ctx context.Context) error {
		out, err := t.client.UpdateItem(ctx, input)
		if err != nil {
			return err
		}
		item = out.Attributes
		return nil
	})
	return item, err
}

// Query reads one page of a partition
func (t *Table) Query(ctx context.Context, q abstractions.Query) (abstractions.QueryPage, error) {
	pkAttr, skAttr := q.Index.KeyAttributes()

	keyCond := expression.Key(pkAttr).Equal(expression.Value(q.Partition))
	if q.SortPrefix != "" {
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(q.SortPrefix))
	}
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	if len(q.Filters) > 0 {
		filter := expression.Name(q.Filters[0].Name).Equal(expression.Value(q.Filters[0].Value))
		for _, f := range q.Filters[1:] {
			filter = filter.And(expression.Name(f.Name).Equal(expression.Value(f.Value)))
		}
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return abstractions.QueryPage{}, fmt.Errorf("failed to build query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.config.TableName),
		IndexName:                 t.indexName(q.Index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         q.StartKey,
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}
	// Global secondary indexes only support eventual consistency.
	if q.ConsistentRead && q.Index == abstractions.IndexTable {
		input.ConsistentRead = aws.Bool(true)
	}

	var page abstractions.QueryPage
	err = t.call(ctx, "Query", func(ctx context.Context) error {
		out, err := t.client.Query(ctx, input)
		if err != nil {
			return err
		}
		page.Items = out.Items
		if len(out.LastEvaluatedKey) > 0 {
			page.LastKey = out.LastEvaluatedKey
		}
		return nil
	})
	return page, err
}

// TransactWrite applies ops atomically with TransactWriteItems
func (t *Table) TransactWrite(ctx context.Context, ops []abstractions.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	items := make([]types.TransactWriteItem, 0, len(ops))
	for i, op := range ops {
		switch {
		case op.Put != nil:
			put := &types.Put{
				TableName: aws.String(t.config.TableName),
				Item:      op.Put,
			}
			if c, ok := conditionExpression(op.Condition, op.Expect); ok {
				expr, err := expression.NewBuilder().WithCondition(*c).Build()
				if err != nil {
					return fmt.Errorf("failed to build condition for operation %d: %w", i, err)
				}
				put.ConditionExpression = expr.Condition()
				put.ExpressionAttributeNames = expr.Names()
				put.ExpressionAttributeValues = expr.Values()
			}
			items = append(items, types.TransactWriteItem{Put: put})
		case op.Delete != nil:
			del := &types.Delete{
				TableName: aws.String(t.config.TableName),
				Key:       op.Delete.Item(),
			}
			if c, ok := conditionExpression(op.Condition, op.Expect); ok {
				expr, err := expression.NewBuilder().WithCondition(*c).Build()
				if err != nil {
					return fmt.Errorf("failed to build condition for operation %d: %w", i, err)
				}
				del.ConditionExpression = expr.Condition()
				del.ExpressionAttributeNames = expr.Names()
				del.ExpressionAttributeValues = expr.Values()
			}
			items = append(items, types.TransactWriteItem{Delete: del})
		default:
			return fmt.Errorf("transaction operation %d has neither put nor delete", i)
		}
	}

	return t.call(ctx, "TransactWriteItems", func(ctx context.Context) error {
		_, err := t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		})
		return err
	})
}
