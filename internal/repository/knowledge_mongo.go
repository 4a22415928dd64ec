package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/intake-engine/internal/domain"
)

const knowledgeCollection = "knowledge_articles"

type articleDocument struct {
	ID                 string                   `bson:"_id"`
	Title              string                   `bson:"title"`
	Description        string                   `bson:"description"`
	Content            string                   `bson:"content"`
	Category           string                   `bson:"category"`
	Subcategory        *string                  `bson:"subcategory"`
	Tags               []string                 `bson:"tags"`
	Keywords           []string                 `bson:"keywords"`
	Solutions          []domain.ArticleSolution `bson:"solutions"`
	Status             string                   `bson:"status"`
	Author             string                   `bson:"author"`
	ViewCount          int                      `bson:"view_count"`
	HelpfulVotes       int                      `bson:"helpful_votes"`
	UnhelpfulVotes     int                      `bson:"unhelpful_votes"`
	SuccessResolutions int                      `bson:"success_resolutions"`
	TotalAttempts      int                      `bson:"total_attempts"`
	CreatedAt          time.Time                `bson:"created_at"`
	UpdatedAt          time.Time                `bson:"updated_at"`
}

func toArticleDocument(a *domain.KnowledgeArticle) articleDocument {
	return articleDocument{
		ID:                 a.ID,
		Title:              a.Title,
		Description:        a.Description,
		Content:            a.Content,
		Category:           string(a.Category),
		Subcategory:        a.Subcategory,
		Tags:               nonNil(a.Tags),
		Keywords:           nonNil(a.Keywords),
		Solutions:          a.Solutions,
		Status:             string(a.Status),
		Author:             a.Author,
		ViewCount:          a.ViewCount,
		HelpfulVotes:       a.HelpfulVotes,
		UnhelpfulVotes:     a.UnhelpfulVotes,
		SuccessResolutions: a.SuccessResolutions,
		TotalAttempts:      a.TotalAttempts,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (d articleDocument) article() domain.KnowledgeArticle {
	return domain.KnowledgeArticle{
		ID:                 d.ID,
		Title:              d.Title,
		Description:        d.Description,
		Content:            d.Content,
		Category:           domain.Category(d.Category),
		Subcategory:        d.Subcategory,
		Tags:               d.Tags,
		Keywords:           d.Keywords,
		Solutions:          d.Solutions,
		Status:             domain.ArticleStatus(d.Status),
		Author:             d.Author,
		ViewCount:          d.ViewCount,
		HelpfulVotes:       d.HelpfulVotes,
		UnhelpfulVotes:     d.UnhelpfulVotes,
		SuccessResolutions: d.SuccessResolutions,
		TotalAttempts:      d.TotalAttempts,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type mongoKnowledgeRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoKnowledgeRepository stores articles in a MongoDB collection.
// Missing documents are reported as pgx.ErrNoRows so callers handle both
// backends the same way.
func NewMongoKnowledgeRepository(db *mongo.Database) KnowledgeRepository {
	return &mongoKnowledgeRepository{collection: db.Collection(knowledgeCollection), now: time.Now}
}

func (r *mongoKnowledgeRepository) Create(ctx context.Context, article *domain.KnowledgeArticle) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.Status == "" {
		article.Status = domain.ArticleStatusDraft
	}
	now := r.now().UTC()
	article.CreatedAt, article.UpdatedAt = now, now

	_, err := r.collection.InsertOne(ctx, toArticleDocument(article))
	return err
}

func (r *mongoKnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

func (r *mongoKnowledgeRepository) GetByTitle(ctx context.Context, title string) (*domain.KnowledgeArticle, error) {
	return r.findOne(ctx, bson.M{"title": title}, bson.D{{Key: "created_at", Value: 1}})
}

func (r *mongoKnowledgeRepository) FindByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.KnowledgeArticle, error) {
	filter := bson.M{"category": string(category), "status": string(domain.ArticleStatusPublished)}
	opts := options.Find().
		SetSort(bson.D{{Key: "success_resolutions", Value: -1}, {Key: "helpful_votes", Value: -1}, {Key: "created_at", Value: 1}}).
		SetLimit(int64(normalizeLimit(limit, 5)))
	return r.find(ctx, filter, opts)
}

func (r *mongoKnowledgeRepository) Search(ctx context.Context, text string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error) {
	terms := SearchTerms(text)
	if len(terms) == 0 {
		return nil, nil
	}

	or := bson.A{bson.M{"keywords": bson.M{"$in": terms}}}
	for _, t := range terms {
		pattern := containsPattern(t)
		or = append(or,
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"content": pattern},
		)
	}
	filter := bson.M{"status": string(domain.ArticleStatusPublished), "$or": or}
	if category != nil {
		filter["category"] = string(*category)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "view_count", Value: -1}, {Key: "created_at", Value: 1}}).
		SetLimit(int64(normalizeLimit(limit, 10)))
	return r.find(ctx, filter, opts)
}

func (r *mongoKnowledgeRepository) FindForCategory(ctx context.Context, category domain.Category, subcategory *string) (*domain.KnowledgeArticle, error) {
	filter := bson.M{"category": string(category), "subcategory": subcategory}
	article, err := r.findOne(ctx, filter, bson.D{{Key: "created_at", Value: 1}})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return article, err
}

func (r *mongoKnowledgeRepository) AppendSolution(ctx context.Context, id string, solution domain.ArticleSolution) error {
	update := bson.M{
		"$push": bson.M{"solutions": solution},
		"$set":  bson.M{"updated_at": r.now().UTC()},
	}
	return r.updateOne(ctx, id, update)
}

func (r *mongoKnowledgeRepository) IncrementCounter(ctx context.Context, id string, counter domain.ArticleCounter) error {
	if !counter.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCounter, counter)
	}
	update := bson.M{
		"$inc": bson.M{string(counter): 1},
		"$set": bson.M{"updated_at": r.now().UTC()},
	}
	return r.updateOne(ctx, id, update)
}

func (r *mongoKnowledgeRepository) SetStatus(ctx context.Context, id string, status domain.ArticleStatus) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"status": string(status), "updated_at": r.now().UTC()}})
}

func (r *mongoKnowledgeRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *mongoKnowledgeRepository) findOne(ctx context.Context, filter bson.M, sort bson.D) (*domain.KnowledgeArticle, error) {
	opts := options.FindOne()
	if sort != nil {
		opts.SetSort(sort)
	}
	var doc articleDocument
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	article := doc.article()
	return &article, nil
}

func (r *mongoKnowledgeRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.KnowledgeArticle, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []articleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.KnowledgeArticle, len(docs))
	for i, d := range docs {
		result[i] = d.article()
	}
	return result, nil
}

func containsPattern(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
