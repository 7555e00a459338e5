package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// CourseIndex is a vector index over course description chunks.
type CourseIndex interface {
	InitCollection(ctx context.Context) error
	UpsertCourse(ctx context.Context, code string, chunk int, text string, embedding []float32) error
	SearchCourses(ctx context.Context, queryEmbedding []float32, limit int) ([]CourseMatch, error)
	DeleteCourse(ctx context.Context, code string) error
}

type CourseMatch struct {
	Code  string
	Score float32
	Text  string
}

type qdrantCourseIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewCourseIndex(urlStr, apiKey, collectionName string, log *zap.Logger) (CourseIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port unless the URL says otherwise.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantCourseIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768,
		log:            log,
	}, nil
}

func (q *qdrantCourseIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Info("✅ Collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// CoursePointID is stable per (code, chunk) so re-ingesting overwrites.
func CoursePointID(code string, chunk int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("course:%s#%d", code, chunk))).String()
}

func (q *qdrantCourseIndex) UpsertCourse(ctx context.Context, code string, chunk int, text string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(CoursePointID(code, chunk)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"course_code": code,
			"chunk":       int64(chunk),
			"text":        text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

func (q *qdrantCourseIndex) SearchCourses(ctx context.Context, queryEmbedding []float32, limit int) ([]CourseMatch, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]CourseMatch, 0, len(points))
	for _, point := range points {
		matches = append(matches, CourseMatch{
			Code:  payloadString(point.Payload, "course_code"),
			Score: point.Score,
			Text:  payloadString(point.Payload, "text"),
		})
	}
	return matches, nil
}

func (q *qdrantCourseIndex) DeleteCourse(ctx context.Context, code string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("course_code", code),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete course %s: %w", code, err)
	}
	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}
