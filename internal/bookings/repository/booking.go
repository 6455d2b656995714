package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/pkg/config"
	mongotx "spacebook/pkg/db/mongo"
	"spacebook/pkg/model"
)

const (
	CollectionName = "Bookings"
)

// ListFilter narrows and pages a booking listing. Pages are 1-based.
type ListFilter struct {
	OwnerID  string
	ClientID string
	Status   string
	// StartDate/EndDate bound slot_start, each independently optional.
	StartDate *time.Time
	EndDate   *time.Time
	// Sort: "" sorts by slot_start ascending; "latest"/"oldest" sort
	// by created_at.
	Sort  string
	Page  int
	Limit int
}

// PaymentFields carries the payment-flow updates applied to a booking.
// Empty strings are skipped so a status poll does not erase the
// reference written at initiation.
type PaymentFields struct {
	Status        string
	Method        string
	Reference     string
	TransactionID string
	Provider      string
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindWithFilter(ctx context.Context, filter ListFilter) ([]*model.Booking, int64, error)
	FindOverlapping(ctx context.Context, spaceID string, start, end time.Time, limit int) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, booking *model.Booking, prevStatus string, prevUpdatedAt time.Time) error
	// UpdatePayment returns the updated_at it wrote. Every write bumps
	// the token, so a caller chaining an optimistic UpdateStatus must
	// pin the returned value, not the one it loaded.
	UpdatePayment(ctx context.Context, id string, fields PaymentFields) (time.Time, error)
	OwnerStats(ctx context.Context, spaceIDs []string, now time.Time) (*model.OwnerStats, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is already a
// SessionContext: wrapping one would break transaction semantics, so
// inside a transaction the context passes through with a no-op cancel.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindWithFilter(ctx context.Context, filter ListFilter) ([]*model.Booking, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := buildListQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = config.DefaultPaginationLimit
	}

	opts := options.Find().
		SetSort(listSort(filter.Sort)).
		SetLimit(int64(limit)).
		SetSkip(int64(page-1) * int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, total, nil
}

func buildListQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	slotRange := bson.M{}
	if filter.StartDate != nil {
		slotRange["$gte"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		slotRange["$lte"] = *filter.EndDate
	}
	if len(slotRange) > 0 {
		query["slot_start"] = slotRange
	}

	return query
}

func listSort(sort string) bson.D {
	switch sort {
	case "latest":
		return bson.D{{Key: "created_at", Value: -1}}
	case "oldest":
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "slot_start", Value: 1}}
	}
}

// FindOverlapping returns bookings for spaceID whose half-open slot
// intersects [start, end). Cancelled and declined bookings never
// block a slot.
func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, spaceID string, start, end time.Time, limit int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"space_id":   spaceID,
		"slot_start": bson.M{"$lt": end},
		"slot_end":   bson.M{"$gt": start},
		"status":     bson.M{"$nin": []string{model.StatusCancelled, model.StatusDeclined}},
	}

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus persists an already-transitioned booking. The filter
// pins the previous status and updated_at so a concurrent transition
// makes this one lose with ErrStaleBooking instead of clobbering.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking, prevStatus string, prevUpdatedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{
		"_id":        objectID,
		"status":     prevStatus,
		"updated_at": prevUpdatedAt,
	}
	update := bson.M{
		"$set": bson.M{
			"status":              booking.Status,
			"cancellation_reason": booking.CancellationReason,
			"updated_at":          now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrStaleBooking
	}

	booking.UpdatedAt = now
	return nil
}

func (r *mongoBookingRepository) UpdatePayment(ctx context.Context, id string, fields PaymentFields) (time.Time, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{"updated_at": now}
	if fields.Status != "" {
		set["payment_status"] = fields.Status
	}
	if fields.Method != "" {
		set["payment_method"] = fields.Method
	}
	if fields.Reference != "" {
		set["payment_reference"] = fields.Reference
	}
	if fields.TransactionID != "" {
		set["payment_transaction_id"] = fields.TransactionID
	}
	if fields.Provider != "" {
		set["payment_provider"] = fields.Provider
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update booking payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return time.Time{}, bookingserrors.ErrNotFound
	}
	return now, nil
}

// OwnerStats aggregates per-status counts, upcoming confirmed bookings
// and realized revenue over the given spaces in a single pipeline.
func (r *mongoBookingRepository) OwnerStats(ctx context.Context, spaceIDs []string, now time.Time) (*model.OwnerStats, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	statusCount := func(status string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
		}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"space_id": bson.M{"$in": spaceIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total":     bson.M{"$sum": 1},
			"pending":   statusCount(model.StatusPending),
			"confirmed": statusCount(model.StatusConfirmed),
			"declined":  statusCount(model.StatusDeclined),
			"cancelled": statusCount(model.StatusCancelled),
			"completed": statusCount(model.StatusCompleted),
			"upcoming": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$status", model.StatusConfirmed}},
					bson.M{"$gte": bson.A{"$slot_start", now}},
				}}, 1, 0,
			}}},
			"revenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$status", bson.A{model.StatusConfirmed, model.StatusCompleted}}},
				"$total_price", 0,
			}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate owner stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total     int64   `bson:"total"`
		Pending   int64   `bson:"pending"`
		Confirmed int64   `bson:"confirmed"`
		Declined  int64   `bson:"declined"`
		Cancelled int64   `bson:"cancelled"`
		Completed int64   `bson:"completed"`
		Upcoming  int64   `bson:"upcoming"`
		Revenue   float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode owner stats: %w", err)
	}

	stats := &model.OwnerStats{}
	if len(rows) > 0 {
		row := rows[0]
		stats.TotalBookings = row.Total
		stats.PendingBookings = row.Pending
		stats.ConfirmedBookings = row.Confirmed
		stats.DeclinedBookings = row.Declined
		stats.CancelledBookings = row.Cancelled
		stats.CompletedBookings = row.Completed
		stats.UpcomingBookings = row.Upcoming
		stats.TotalRevenue = row.Revenue
	}
	return stats, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
