package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"concepter-backend/application/ports"
	"concepter-backend/domain/serialization"
	appErrors "concepter-backend/pkg/errors"
	"concepter-backend/pkg/utils"
)

const (
	projectKeyPrefix = "PROJECT#"
	nodeKeyPrefix    = "NODE#"
	metadataSortKey  = "METADATA"
	batchWriteLimit  = 25
)

// ProjectRepository implements the ProjectRepository port on a
// single-table DynamoDB layout: one metadata item per project plus one
// item per node record, all sharing the project partition key.
type ProjectRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProjectRepository creates a new DynamoDB-backed repository
func NewProjectRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ProjectRepository {
	return &ProjectRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// projectItem is the metadata item for one project
type projectItem struct {
	PK             string                 `dynamodbav:"PK"`
	SK             string                 `dynamodbav:"SK"`
	EntityType     string                 `dynamodbav:"EntityType"`
	Name           string                 `dynamodbav:"Name"`
	NodeCount      int                    `dynamodbav:"NodeCount"`
	StateVariables map[string]interface{} `dynamodbav:"StateVariables,omitempty"`
	UpdatedAt      string                 `dynamodbav:"UpdatedAt"`
}

// nodeItem holds one serialized node record
type nodeItem struct {
	PK         string                   `dynamodbav:"PK"`
	SK         string                   `dynamodbav:"SK"`
	EntityType string                   `dynamodbav:"EntityType"`
	Record     serialization.NodeRecord `dynamodbav:"Record"`
}

func projectPK(name string) string {
	return projectKeyPrefix + name
}

// ListProjects scans for project metadata items
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]string, error) {
	var names []string
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("EntityType = :t AND SK = :meta"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t":    &types.AttributeValueMemberS{Value: "PROJECT"},
				":meta": &types.AttributeValueMemberS{Value: metadataSortKey},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, appErrors.NewDatabaseError("list projects", err)
		}
		for _, item := range out.Items {
			var meta projectItem
			if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
				r.logger.Warn("skipping unreadable project item", zap.Error(err))
				continue
			}
			names = append(names, meta.Name)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return names, nil
}

// LoadProject queries every item in the project partition
func (r *ProjectRepository) LoadProject(ctx context.Context, name string) ([]serialization.NodeRecord, map[string]interface{}, error) {
	var records []serialization.NodeRecord
	var stateVariables map[string]interface{}
	var startKey map[string]types.AttributeValue
	found := false

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: projectPK(name)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, nil, appErrors.NewDatabaseError("load project", err)
		}

		for _, item := range out.Items {
			found = true
			sk := stringAttr(item["SK"])
			switch {
			case sk == metadataSortKey:
				var meta projectItem
				if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
					r.logger.Warn("unreadable project metadata",
						zap.String("project", name),
						zap.Error(err),
					)
					continue
				}
				stateVariables = meta.StateVariables
			case strings.HasPrefix(sk, nodeKeyPrefix):
				var node nodeItem
				if err := attributevalue.UnmarshalMap(item, &node); err != nil {
					r.logger.Warn("skipping unreadable node item",
						zap.String("project", name),
						zap.String("sk", sk),
						zap.Error(err),
					)
					continue
				}
				records = append(records, node.Record)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	if !found {
		return nil, nil, appErrors.NewNotFoundError("project " + name)
	}
	return records, stateVariables, nil
}

// SaveProject writes the metadata and node items, then removes node
// items left over from the prior version
func (r *ProjectRepository) SaveProject(ctx context.Context, name string, records []serialization.NodeRecord, stateVariables map[string]interface{}) error {
	pk := projectPK(name)

	existing, err := r.nodeSortKeys(ctx, pk)
	if err != nil {
		return err
	}

	writes := make([]types.WriteRequest, 0, len(records)+1)

	meta := projectItem{
		PK:             pk,
		SK:             metadataSortKey,
		EntityType:     "PROJECT",
		Name:           name,
		NodeCount:      len(records),
		StateVariables: stateVariables,
		UpdatedAt:      utils.NowRFC3339(),
	}
	metaAttrs, err := attributevalue.MarshalMap(meta)
	if err != nil {
		return appErrors.NewDatabaseError("marshal project metadata", err)
	}
	writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: metaAttrs}})

	current := make(map[string]bool, len(records))
	for _, rec := range records {
		sk := nodeKeyPrefix + rec.ID
		current[sk] = true
		attrs, err := attributevalue.MarshalMap(nodeItem{
			PK:         pk,
			SK:         sk,
			EntityType: "PROJECT_NODE",
			Record:     rec,
		})
		if err != nil {
			return appErrors.NewDatabaseError(fmt.Sprintf("marshal node %s", rec.ID), err)
		}
		writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: attrs}})
	}

	// stale node items from the prior version get deleted in the same run
	for _, sk := range existing {
		if !current[sk] {
			writes = append(writes, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: pk},
					"SK": &types.AttributeValueMemberS{Value: sk},
				},
			}})
		}
	}

	if err := r.batchWrite(ctx, writes); err != nil {
		return err
	}
	r.logger.Info("saved project",
		zap.String("project", name),
		zap.Int("nodes", len(records)),
	)
	return nil
}

// DeleteProject removes every item in the project partition
func (r *ProjectRepository) DeleteProject(ctx context.Context, name string) error {
	pk := projectPK(name)

	keys, err := r.nodeSortKeys(ctx, pk)
	if err != nil {
		return err
	}
	keys = append(keys, metadataSortKey)

	writes := make([]types.WriteRequest, 0, len(keys))
	for _, sk := range keys {
		writes = append(writes, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: pk},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		}})
	}
	return r.batchWrite(ctx, writes)
}

// nodeSortKeys lists the node item sort keys in one project partition
func (r *ProjectRepository) nodeSortKeys(ctx context.Context, pk string) ([]string, error) {
	var keys []string
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: pk},
				":prefix": &types.AttributeValueMemberS{Value: nodeKeyPrefix},
			},
			ProjectionExpression: aws.String("SK"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return nil, appErrors.NewDatabaseError("query project nodes", err)
		}
		for _, item := range out.Items {
			if sk := stringAttr(item["SK"]); sk != "" {
				keys = append(keys, sk)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return keys, nil
}

// batchWrite flushes write requests in DynamoDB's 25-item chunks,
// retrying unprocessed items once before giving up
func (r *ProjectRepository) batchWrite(ctx context.Context, writes []types.WriteRequest) error {
	for start := 0; start < len(writes); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(writes) {
			end = len(writes)
		}
		chunk := writes[start:end]

		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: chunk},
		})
		if err != nil {
			return appErrors.NewDatabaseError("batch write", err)
		}
		if unprocessed := out.UnprocessedItems[r.tableName]; len(unprocessed) > 0 {
			retry, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{r.tableName: unprocessed},
			})
			if err != nil {
				return appErrors.NewDatabaseError("batch write retry", err)
			}
			if len(retry.UnprocessedItems[r.tableName]) > 0 {
				return appErrors.NewDatabaseError("batch write", fmt.Errorf("%d items unprocessed after retry", len(retry.UnprocessedItems[r.tableName])))
			}
		}
	}
	return nil
}

func stringAttr(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
