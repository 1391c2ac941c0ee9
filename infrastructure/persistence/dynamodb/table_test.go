package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubhub-backend/infrastructure/persistence/abstractions"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockAPI) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *mockAPI) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *mockAPI) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.TransactWriteItemsOutput), args.Error(1)
}

func newTestTable(api API, breaker BreakerConfig) *Table {
	return NewTable(api, TableConfig{
		TableName: "clubs",
		GSI1Name:  "clubs-gsi1",
		GSI2Name:  "clubs-gsi2",
		Breaker:   breaker,
	}, zap.NewNop())
}

func hasName(names map[string]string, want string) bool {
	for _, v := range names {
		if v == want {
			return true
		}
	}
	return false
}

func hasStringValue(values map[string]types.AttributeValue, want string) bool {
	for _, v := range values {
		if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == want {
			return true
		}
	}
	return false
}

func sItem(kv ...string) abstractions.Item {
	item := abstractions.Item{}
	for i := 0; i+1 < len(kv); i += 2 {
		item[kv[i]] = &types.AttributeValueMemberS{Value: kv[i+1]}
	}
	return item
}

func TestTable_Get(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	table := newTestTable(api, BreakerConfig{})
	key := abstractions.Key{PK: "CLUB#C1", SK: "MEMBER#U1"}

	var input *dynamodb.GetItemInput
	api.On("GetItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*dynamodb.GetItemInput) }).
		Return(&dynamodb.GetItemOutput{Item: sItem("PK", key.PK, "Role", "admin")}, nil).Once()

	item, err := table.Get(ctx, key, "PK", "Role")
	require.NoError(t, err)
	assert.Equal(t, "admin", abstractions.StringAttr(item, "Role"))

	require.NotNil(t, input)
	assert.Equal(t, "clubs", aws.ToString(input.TableName))
	assert.True(t, aws.ToBool(input.ConsistentRead))
	assert.Equal(t, key.Item(), input.Key)
	require.NotNil(t, input.ProjectionExpression)
	assert.True(t, hasName(input.ExpressionAttributeNames, "PK"))
	assert.True(t, hasName(input.ExpressionAttributeNames, "Role"))

	api.On("GetItem", mock.Anything, mock.Anything).
		Return(&dynamodb.GetItemOutput{}, nil).Once()

	item, err = table.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, item, "an empty response means the item does not exist")
	api.AssertExpectations(t)
}

func TestTable_Query(t *testing.T) {
	startKey := sItem("PK", "INDEX#CLUB", "SK", "NAME#a#ID#1")

	tests := []struct {
		name           string
		query          abstractions.Query
		wantIndex      *string
		wantConsistent *bool
		wantLimit      *int32
	}{
		{
			name:           "base table keeps consistent reads",
			query:          abstractions.Query{Partition: "CLUB#C1", SortPrefix: "MEMBER#", ConsistentRead: true},
			wantConsistent: aws.Bool(true),
		},
		{
			name:      "gsi1 drops consistent reads",
			query:     abstractions.Query{Index: abstractions.IndexGSI1, Partition: "INDEX#CLUB", ConsistentRead: true, Limit: 21, StartKey: startKey},
			wantIndex: aws.String("clubs-gsi1"),
			wantLimit: aws.Int32(21),
		},
		{
			name: "gsi2 with filters",
			query: abstractions.Query{
				Index:      abstractions.IndexGSI2,
				Partition:  "CLUB#C1#MEMBERS",
				SortPrefix: "ROLE#admin#",
				Filters:    []abstractions.Filter{{Name: "Status", Value: "active"}},
			},
			wantIndex: aws.String("clubs-gsi2"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockAPI)
			table := newTestTable(api, BreakerConfig{})

			var input *dynamodb.QueryInput
			api.On("Query", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { input = args.Get(1).(*dynamodb.QueryInput) }).
				Return(&dynamodb.QueryOutput{
					Items:            []map[string]types.AttributeValue{sItem("PK", tt.query.Partition)},
					LastEvaluatedKey: startKey,
				}, nil)

			page, err := table.Query(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Len(t, page.Items, 1)
			assert.Equal(t, startKey, page.LastKey)

			require.NotNil(t, input)
			assert.Equal(t, tt.wantIndex, input.IndexName)
			assert.Equal(t, tt.wantConsistent, input.ConsistentRead)
			assert.Equal(t, tt.wantLimit, input.Limit)
			assert.Equal(t, tt.query.StartKey, input.ExclusiveStartKey)
			assert.True(t, hasStringValue(input.ExpressionAttributeValues, tt.query.Partition))

			pk, _ := tt.query.Index.KeyAttributes()
			assert.True(t, hasName(input.ExpressionAttributeNames, pk))
			if len(tt.query.Filters) > 0 {
				require.NotNil(t, input.FilterExpression)
				assert.True(t, hasStringValue(input.ExpressionAttributeValues, "active"))
			} else {
				assert.Nil(t, input.FilterExpression)
			}
		})
	}
}

func TestTable_TransactWriteConditions(t *testing.T) {
	api := new(mockAPI)
	table := newTestTable(api, BreakerConfig{})

	var input *dynamodb.TransactWriteItemsInput
	api.On("TransactWriteItems", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
		Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

	stale := abstractions.Key{PK: "CLUB#C1#MEMBERS", SK: "ROLE#member#USER#U1"}
	err := table.TransactWrite(context.Background(), []abstractions.WriteOp{
		abstractions.PutOp(sItem("PK", "CLUB#C2", "SK", "METADATA"), abstractions.ConditionNotExists),
		abstractions.PutOp(sItem("PK", "CLUB#C1", "SK", "MEMBER#U1"), abstractions.ConditionExists).
			Expecting(abstractions.Filter{Name: "Role", Value: "member"}),
		abstractions.DeleteOp(stale),
		abstractions.PutOp(sItem("PK", "USER#U1", "SK", "MEMBERSHIP#C1"), abstractions.ConditionNone),
	})
	require.NoError(t, err)
	require.NotNil(t, input)
	require.Len(t, input.TransactItems, 4)

	create := input.TransactItems[0].Put
	require.NotNil(t, create)
	assert.Equal(t, "clubs", aws.ToString(create.TableName))
	assert.Contains(t, aws.ToString(create.ConditionExpression), "attribute_not_exists")
	assert.True(t, hasName(create.ExpressionAttributeNames, abstractions.AttrPK))

	guarded := input.TransactItems[1].Put
	require.NotNil(t, guarded)
	assert.Contains(t, aws.ToString(guarded.ConditionExpression), "attribute_exists")
	assert.Contains(t, aws.ToString(guarded.ConditionExpression), "AND")
	assert.True(t, hasName(guarded.ExpressionAttributeNames, "Role"))
	assert.True(t, hasStringValue(guarded.ExpressionAttributeValues, "member"))

	del := input.TransactItems[2].Delete
	require.NotNil(t, del)
	assert.Equal(t, stale.Item(), del.Key)
	assert.Nil(t, del.ConditionExpression)

	plain := input.TransactItems[3].Put
	require.NotNil(t, plain)
	assert.Nil(t, plain.ConditionExpression)

	require.NoError(t, table.TransactWrite(context.Background(), nil))
	api.AssertExpectations(t)
}

func TestTable_TransactWriteRejectsEmptyOp(t *testing.T) {
	api := new(mockAPI)
	err := newTestTable(api, BreakerConfig{}).TransactWrite(context.Background(), []abstractions.WriteOp{{}})
	assert.Error(t, err)
	api.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
}

func TestTable_ErrorMapping(t *testing.T) {
	boom := errors.New("throttled")

	tests := []struct {
		name          string
		err           error
		wantCondition bool
	}{
		{
			name: "cancelled transaction with a failed condition",
			err: &types.TransactionCanceledException{
				Message: aws.String("Transaction cancelled"),
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("None")},
					{Code: aws.String("ConditionalCheckFailed")},
				},
			},
			wantCondition: true,
		},
		{
			name: "cancelled transaction without a failed condition",
			err: &types.TransactionCanceledException{
				Message:             aws.String("Transaction cancelled"),
				CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
			},
		},
		{
			name:          "conditional check on a single write",
			err:           &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")},
			wantCondition: true,
		},
		{
			name: "other errors pass through",
			err:  boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockAPI)
			table := newTestTable(api, BreakerConfig{})
			api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, tt.err)

			err := table.TransactWrite(context.Background(), []abstractions.WriteOp{
				abstractions.PutOp(sItem("PK", "CLUB#C1", "SK", "METADATA"), abstractions.ConditionNotExists),
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantCondition, errors.Is(err, abstractions.ErrConditionFailed), "got %v", err)
			if !tt.wantCondition {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestTable_UpdateBuildsSetExpression(t *testing.T) {
	api := new(mockAPI)
	table := newTestTable(api, BreakerConfig{})

	var input *dynamodb.UpdateItemInput
	api.On("UpdateItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*dynamodb.UpdateItemInput) }).
		Return(&dynamodb.UpdateItemOutput{Attributes: sItem("DisplayName", "Ana")}, nil).Once()

	item, err := table.Update(context.Background(), abstractions.Key{PK: "USER#U1", SK: "PROFILE"},
		map[string]interface{}{"DisplayName": "Ana"}, abstractions.ConditionExists)
	require.NoError(t, err)
	assert.Equal(t, "Ana", abstractions.StringAttr(item, "DisplayName"))

	require.NotNil(t, input)
	assert.Contains(t, aws.ToString(input.UpdateExpression), "SET")
	assert.Contains(t, aws.ToString(input.ConditionExpression), "attribute_exists")
	assert.Equal(t, types.ReturnValueAllNew, input.ReturnValues)
	assert.True(t, hasStringValue(input.ExpressionAttributeValues, "Ana"))

	_, err = table.Update(context.Background(), abstractions.Key{PK: "USER#U1", SK: "PROFILE"}, nil, abstractions.ConditionNone)
	assert.Error(t, err)
	api.AssertExpectations(t)
}

func TestTable_BreakerIgnoresConditionFailures(t *testing.T) {
	breaker := BreakerConfig{
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	put := func(table *Table) error {
		return table.Put(context.Background(), sItem("PK", "CLUB#C1", "SK", "METADATA"), abstractions.ConditionNotExists)
	}

	t.Run("condition failures keep the breaker closed", func(t *testing.T) {
		api := new(mockAPI)
		table := newTestTable(api, breaker)
		api.On("PutItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")})

		for i := 0; i < 5; i++ {
			assert.ErrorIs(t, put(table), abstractions.ErrConditionFailed)
		}
		assert.Equal(t, gobreaker.StateClosed, table.breaker.State())
		api.AssertNumberOfCalls(t, "PutItem", 5)
	})

	t.Run("storage failures open it", func(t *testing.T) {
		api := new(mockAPI)
		table := newTestTable(api, breaker)
		api.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("service unavailable"))

		assert.Error(t, put(table))
		assert.Error(t, put(table))
		assert.Equal(t, gobreaker.StateOpen, table.breaker.State())

		err := put(table)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		api.AssertNumberOfCalls(t, "PutItem", 2)
	})
}
