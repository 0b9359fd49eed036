package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory table keyed on a single string attribute.
// It understands the condition and filter expressions the stores issue.
type fakeDynamo struct {
	mu         sync.Mutex
	key        string
	items      map[string]map[string]types.AttributeValue
	pageSize   int
	failPut    error
	failUpdate error
}

func newFakeDynamo(key string) *fakeDynamo {
	return &fakeDynamo{key: key, items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) keyOf(item map[string]types.AttributeValue) string {
	if s, ok := item[f.key].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// checkCondition evaluates "attribute_exists(A)", "attribute_not_exists(A)" and
// "A = :v" clauses joined by AND against the current item (nil when absent).
func (f *fakeDynamo) checkCondition(expr *string, current map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) error {
	if expr == nil {
		return nil
	}
	for _, clause := range strings.Split(*expr, " AND ") {
		clause = strings.TrimSpace(clause)
		ok := true
		switch {
		case strings.HasPrefix(clause, "attribute_not_exists"):
			ok = current == nil
		case strings.HasPrefix(clause, "attribute_exists"):
			ok = current != nil
		default:
			parts := strings.Split(clause, " = ")
			if len(parts) != 2 {
				return fmt.Errorf("unsupported condition %q", clause)
			}
			ok = current != nil && equalString(current[resolveName(parts[0], names)], values[parts[1]])
		}
		if !ok {
			return &types.ConditionalCheckFailedException{Message: aws.String(clause)}
		}
	}
	return nil
}

func resolveName(name string, names map[string]string) string {
	if real, ok := names[name]; ok {
		return real
	}
	return name
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[f.keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return nil, f.failPut
	}
	k := f.keyOf(in.Item)
	if err := f.checkCondition(in.ConditionExpression, f.items[k], in.ExpressionAttributeNames, in.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	f.items[k] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

// UpdateItem supports "SET A = :a, #b = :b" update expressions.
func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	k := f.keyOf(in.Key)
	current := f.items[k]
	if err := f.checkCondition(in.ConditionExpression, current, in.ExpressionAttributeNames, in.ExpressionAttributeValues); err != nil {
		return nil, err
	}

	expr := aws.ToString(in.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("unsupported update %q", expr)
	}

	next := make(map[string]types.AttributeValue, len(current)+len(in.Key))
	for attr, v := range current {
		next[attr] = v
	}
	for attr, v := range in.Key {
		next[attr] = v
	}
	for _, assignment := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.Split(assignment, " = ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported assignment %q", assignment)
		}
		next[resolveName(parts[0], in.ExpressionAttributeNames)] = in.ExpressionAttributeValues[parts[1]]
	}
	f.items[k] = next
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.keyOf(in.Key)
	if err := f.checkCondition(in.ConditionExpression, f.items[k], in.ExpressionAttributeNames, in.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan supports "Attr = :value" filters and pages results by pageSize.
func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var attr string
	var want types.AttributeValue
	if in.FilterExpression != nil {
		parts := strings.Split(*in.FilterExpression, " = ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported filter %q", *in.FilterExpression)
		}
		attr, want = parts[0], in.ExpressionAttributeValues[parts[1]]
	}

	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		last := f.keyOf(in.ExclusiveStartKey)
		for i, k := range keys {
			if k == last {
				start = i + 1
			}
		}
	}

	out := &dynamodb.ScanOutput{}
	for i := start; i < len(keys); i++ {
		if f.pageSize > 0 && i-start == f.pageSize {
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				f.key: &types.AttributeValueMemberS{Value: keys[i-1]},
			}
			break
		}
		item := f.items[keys[i]]
		if attr != "" && !equalString(item[attr], want) {
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return nil, errors.New("not implemented")
}

func equalString(a, b types.AttributeValue) bool {
	as, ok1 := a.(*types.AttributeValueMemberS)
	bs, ok2 := b.(*types.AttributeValueMemberS)
	return ok1 && ok2 && as.Value == bs.Value
}
