package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"

	"barterhub/internal/eligibility"
	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
	"barterhub/internal/pkg/campaigncode"
	"barterhub/internal/pkg/limiter"
)

// memClaimStore serializes transactions on per-row mutexes and applies their writes only
// when fn returns nil, the same guarantees the Postgres store gives the services.
type memClaimStore struct {
	mu           sync.Mutex
	locks        map[string]*sync.Mutex
	offers       map[int64]*models.Offer
	creators     map[int64]*models.Creator
	accounts     map[int64][]models.SocialAccount
	rejections   []models.OfferRejection
	matches      map[int64]*models.Match
	deliverables map[int64]*models.Deliverable
	codes        map[string]bool
	nextID       int64
}

func newMemClaimStore() *memClaimStore {
	return &memClaimStore{
		locks:        map[string]*sync.Mutex{},
		offers:       map[int64]*models.Offer{},
		creators:     map[int64]*models.Creator{},
		accounts:     map[int64][]models.SocialAccount{},
		matches:      map[int64]*models.Match{},
		deliverables: map[int64]*models.Deliverable{},
		codes:        map[string]bool{},
	}
}

func (s *memClaimStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memClaimStore) lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func (s *memClaimStore) GetOffer(_ context.Context, offerID int64) (*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offer, ok := s.offers[offerID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	v := *offer
	return &v, nil
}

func (s *memClaimStore) GetCreator(_ context.Context, creatorID int64) (*models.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creator, ok := s.creators[creatorID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	v := *creator
	return &v, nil
}

func (s *memClaimStore) ListSocialAccounts(_ context.Context, creatorID int64) ([]models.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SocialAccount(nil), s.accounts[creatorID]...), nil
}

func (s *memClaimStore) IsRejected(_ context.Context, offerID, creatorID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rejections {
		if r.OfferID == offerID && r.CreatorID == creatorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memClaimStore) RunClaimTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.ClaimTx) error) error {
	tx := &memClaimTx{store: s}
	err := fn(ctx, tx)

	s.mu.Lock()
	if err == nil {
		for _, op := range tx.ops {
			op()
		}
	} else {
		for _, undo := range tx.undo {
			undo()
		}
	}
	s.mu.Unlock()

	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	return err
}

func (s *memClaimStore) matchesFor(offerID int64) []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		if m.OfferID == offerID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memClaimStore) deliverableFor(matchID int64) *models.Deliverable {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deliverables {
		if d.MatchID == matchID {
			v := *d
			return &v
		}
	}
	return nil
}

type memClaimTx struct {
	store *memClaimStore
	held  []*sync.Mutex
	ops   []func()
	undo  []func()
}

func (tx *memClaimTx) hold(key string) {
	m := tx.store.lock(key)
	m.Lock()
	tx.held = append(tx.held, m)
}

func (tx *memClaimTx) LockOffer(ctx context.Context, offerID int64) (*models.Offer, error) {
	tx.hold(fmt.Sprintf("offer:%d", offerID))
	return tx.store.GetOffer(ctx, offerID)
}

func (tx *memClaimTx) HasActiveMatch(_ context.Context, offerID, creatorID int64) (bool, error) {
	for _, m := range tx.store.matchesFor(offerID) {
		if m.CreatorID == creatorID && !m.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memClaimTx) CountActiveMatches(_ context.Context, offerID int64) (int, error) {
	count := 0
	for _, m := range tx.store.matchesFor(offerID) {
		if !m.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

func (tx *memClaimTx) ReserveCampaignCode(_ context.Context, code string) (bool, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if tx.store.codes[code] {
		return false, nil
	}
	tx.store.codes[code] = true
	tx.undo = append(tx.undo, func() { delete(tx.store.codes, code) })
	return true, nil
}

func (tx *memClaimTx) InsertMatch(_ context.Context, match *models.Match) error {
	tx.store.mu.Lock()
	match.ID = tx.store.id()
	tx.store.mu.Unlock()

	v := *match
	tx.ops = append(tx.ops, func() { tx.store.matches[v.ID] = &v })
	return nil
}

func (tx *memClaimTx) InsertDeliverable(_ context.Context, deliverable *models.Deliverable) error {
	tx.store.mu.Lock()
	deliverable.ID = tx.store.id()
	tx.store.mu.Unlock()

	v := *deliverable
	tx.ops = append(tx.ops, func() { tx.store.deliverables[v.ID] = &v })
	return nil
}

func (tx *memClaimTx) GetMatchForUpdate(_ context.Context, matchID int64) (*models.Match, error) {
	tx.hold(fmt.Sprintf("match:%d", matchID))
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	m, ok := tx.store.matches[matchID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	v := *m
	return &v, nil
}

func (tx *memClaimTx) UpdateMatchStatus(_ context.Context, matchID int64, from, to models.MatchStatus, acceptedAt *time.Time) (bool, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	m, ok := tx.store.matches[matchID]
	if !ok || m.Status != from {
		return false, nil
	}
	tx.ops = append(tx.ops, func() {
		m.Status = to
		if acceptedAt != nil {
			m.AcceptedAt = acceptedAt
		}
	})
	return true, nil
}

func (tx *memClaimTx) InsertRejection(_ context.Context, rejection *models.OfferRejection) error {
	v := *rejection
	tx.ops = append(tx.ops, func() { tx.store.rejections = append(tx.store.rejections, v) })
	return nil
}

type memStrikeStore struct {
	mu      sync.Mutex
	strikes []models.Strike
}

func (s *memStrikeStore) InsertStrike(_ context.Context, strike *models.Strike) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.strikes {
		if existing.MatchID == strike.MatchID {
			return false, nil
		}
	}
	strike.ID = int64(len(s.strikes) + 1)
	s.strikes = append(s.strikes, *strike)
	return true, nil
}

func (s *memStrikeStore) CountStrikes(_ context.Context, creatorID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, strike := range s.strikes {
		if strike.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

func (s *memStrikeStore) ListStrikes(_ context.Context, creatorID int64) ([]models.Strike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Strike
	for i := len(s.strikes) - 1; i >= 0; i-- {
		if s.strikes[i].CreatorID == creatorID {
			out = append(out, s.strikes[i])
		}
	}
	return out, nil
}

type memShipmentStore struct {
	mu        sync.Mutex
	shipments map[int64]models.ManualShipment
}

func (s *memShipmentStore) InsertManualShipment(_ context.Context, shipment *models.ManualShipment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shipments == nil {
		s.shipments = map[int64]models.ManualShipment{}
	}
	if _, ok := s.shipments[shipment.MatchID]; ok {
		return false, nil
	}
	s.shipments[shipment.MatchID] = *shipment
	return true, nil
}

type fakeCommerce struct {
	mu          sync.Mutex
	discountErr error
	orderErr    error
	discounts   []interfaces.DiscountRequest
	orders      []interfaces.OrderRequest
}

func (c *fakeCommerce) CreateDiscountCode(_ context.Context, req interfaces.DiscountRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.discountErr != nil {
		return "", c.discountErr
	}
	c.discounts = append(c.discounts, req)
	return "disc_" + req.Code, nil
}

func (c *fakeCommerce) CreateOrder(_ context.Context, req interfaces.OrderRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orderErr != nil {
		return "", c.orderErr
	}
	c.orders = append(c.orders, req)
	return fmt.Sprintf("order_%d", req.MatchID), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	down bool
}

func (n *recordingNotifier) Notify(_ context.Context, notification models.Notification) models.DeliveryReport {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.down {
		return models.DeliveryReport{Failed: map[models.Channel]error{models.ChannelEmail: fmt.Errorf("smtp down")}}
	}
	n.sent = append(n.sent, notification)
	return models.DeliveryReport{Sent: []models.Channel{models.ChannelEmail}}
}

func (n *recordingNotifier) kinds() []models.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]models.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

type fakeLimiter struct {
	mu    sync.Mutex
	err   error
	limit map[string]bool
	keys  []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.err != nil {
		return l.err
	}
	if l.limit[key] {
		return limiter.ErrRateLimited
	}
	return nil
}

type fakeSubscriptions struct {
	inactive map[int64]bool
}

func (s *fakeSubscriptions) IsActive(_ context.Context, brandID int64) (bool, error) {
	return !s.inactive[brandID], nil
}

type fakeLister struct {
	platform models.Platform
	media    map[string][]models.Media
	err      error
	calls    int
}

func (l *fakeLister) Platform() models.Platform { return l.platform }

func (l *fakeLister) ListRecentMedia(_ context.Context, account models.SocialAccount, _ int) ([]models.Media, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.media[account.ExternalUserID], nil
}

// memDeliverable is a deliverable row joined with what the reconciler queries need.
type memDeliverable struct {
	models.Deliverable
	CreatorID    int64
	CampaignCode string
	AcceptedAt   time.Time
	OfferTitle   string
	BrandHandle  string
	Account      *models.SocialAccount
}

type memLifecycleStore struct {
	mu      sync.Mutex
	rows    map[int64]*memDeliverable
	strikes *memStrikeStore
	listErr error
	failErr error
}

func newMemLifecycleStore(strikes *memStrikeStore) *memLifecycleStore {
	return &memLifecycleStore{rows: map[int64]*memDeliverable{}, strikes: strikes}
}

func (s *memLifecycleStore) add(row *memDeliverable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.Status == "" {
		row.Status = models.DeliverableStatusDue
	}
	s.rows[row.ID] = row
}

func (s *memLifecycleStore) get(id int64) memDeliverable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.rows[id]
}

func (s *memLifecycleStore) sorted() []*memDeliverable {
	out := make([]*memDeliverable, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memLifecycleStore) ListReminderCandidates(_ context.Context, from, to time.Time, limit int) ([]models.ReminderCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.ReminderCandidate
	for _, row := range s.sorted() {
		if row.Status != models.DeliverableStatusDue || row.ReminderSentAt != nil {
			continue
		}
		if !row.DueAt.After(from) || row.DueAt.After(to) {
			continue
		}
		out = append(out, models.ReminderCandidate{
			DeliverableID: row.ID,
			MatchID:       row.MatchID,
			DueAt:         row.DueAt,
			OfferTitle:    row.OfferTitle,
			CampaignCode:  row.CampaignCode,
			CreatorEmail:  "creator@example.com",
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memLifecycleStore) MarkReminderSent(_ context.Context, deliverableID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[deliverableID]
	if row.Status != models.DeliverableStatusDue || row.ReminderSentAt != nil {
		return false, nil
	}
	row.ReminderSentAt = &at
	return true, nil
}

func (s *memLifecycleStore) ListVerificationCandidates(_ context.Context, platform models.Platform, now time.Time, limit int) ([]models.VerificationCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var rows []*memDeliverable
	for _, row := range s.sorted() {
		if row.Status != models.DeliverableStatusDue || row.ExpectedType == models.DeliverableTypeUGCOnly {
			continue
		}
		if row.Account == nil || row.Account.Platform != platform || row.Account.AccessToken == "" || row.Account.TokenExpired(now) {
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].LastCheckedAt, rows[j].LastCheckedAt
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})

	var out []models.VerificationCandidate
	for _, row := range rows {
		out = append(out, models.VerificationCandidate{
			DeliverableID:  row.ID,
			MatchID:        row.MatchID,
			ExpectedType:   row.ExpectedType,
			CampaignCode:   row.CampaignCode,
			AcceptedAt:     row.AcceptedAt,
			OfferMetadata:  models.OfferMetadata{BrandHandle: row.BrandHandle},
			AccountID:      row.Account.ID,
			Platform:       row.Account.Platform,
			ExternalUserID: row.Account.ExternalUserID,
			Handle:         row.Account.Handle,
			AccessToken:    row.Account.AccessToken,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memLifecycleStore) MarkChecked(_ context.Context, deliverableID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row := s.rows[deliverableID]; row.Status == models.DeliverableStatusDue {
		row.LastCheckedAt = &at
	}
	return nil
}

func (s *memLifecycleStore) MarkVerified(_ context.Context, deliverableID int64, media models.Media, source models.VerificationSource, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[deliverableID]
	if row.Status != models.DeliverableStatusDue {
		return false, nil
	}
	row.Status = models.DeliverableStatusVerified
	row.VerifiedAt = &at
	row.VerificationSource = source
	row.ExternalMediaID = media.ExternalID
	row.Permalink = media.Permalink
	return true, nil
}

func (s *memLifecycleStore) ListOverdue(_ context.Context, now time.Time, limit int) ([]models.OverdueCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.OverdueCandidate
	for _, row := range s.sorted() {
		if row.Status != models.DeliverableStatusDue || !row.DueAt.Before(now) {
			continue
		}
		out = append(out, models.OverdueCandidate{
			DeliverableID: row.ID,
			MatchID:       row.MatchID,
			CreatorID:     row.CreatorID,
			DueAt:         row.DueAt,
			OfferTitle:    row.OfferTitle,
			CreatorEmail:  "creator@example.com",
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memLifecycleStore) FailWithStrike(ctx context.Context, candidate models.OverdueCandidate, reason string, at time.Time) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, false, s.failErr
	}
	row := s.rows[candidate.DeliverableID]
	if row.Status != models.DeliverableStatusDue {
		return false, false, nil
	}
	row.Status = models.DeliverableStatusFailed
	row.FailureReason = reason

	struck, err := s.strikes.InsertStrike(ctx, &models.Strike{CreatorID: candidate.CreatorID, MatchID: candidate.MatchID, Reason: reason, CreatedAt: at})
	return true, struck, err
}

func (s *memLifecycleStore) GetDeliverableOwner(_ context.Context, deliverableID int64) (*models.DeliverableOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[deliverableID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.DeliverableOwner{
		DeliverableID: row.ID,
		MatchID:       row.MatchID,
		Status:        row.Status,
		ExpectedType:  row.ExpectedType,
		CreatorID:     row.CreatorID,
		BrandID:       testBrandID,
		SubmissionURL: row.SubmissionURL,
	}, nil
}

func (s *memLifecycleStore) RecordSubmission(_ context.Context, deliverableID int64, url, note string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[deliverableID]
	if row.Status != models.DeliverableStatusDue {
		return false, nil
	}
	row.SubmissionURL = url
	row.SubmissionNote = note
	row.SubmittedAt = &at
	return true, nil
}

const (
	testBrandID   = 10
	testOfferID   = 20
	testCreatorID = 30
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

type claimFixture struct {
	store         *memClaimStore
	strikes       *memStrikeStore
	commerce      *fakeCommerce
	shipments     *memShipmentStore
	notifier      *recordingNotifier
	limiter       *fakeLimiter
	subscriptions *fakeSubscriptions
	claims        *ServiceClaim
	matches       *ServiceMatch
}

// newClaimFixture seeds a published offer from a brand in Paris and a nano creator a few
// kilometres away with a connected TikTok account.
func newClaimFixture() *claimFixture {
	f := &claimFixture{
		store:         newMemClaimStore(),
		strikes:       &memStrikeStore{},
		commerce:      &fakeCommerce{},
		shipments:     &memShipmentStore{},
		notifier:      &recordingNotifier{},
		limiter:       &fakeLimiter{},
		subscriptions: &fakeSubscriptions{},
	}
	f.store.nextID = 1000

	brand := &models.Brand{ID: testBrandID, Name: "Cafe Lumen", Latitude: ptr(48.8566), Longitude: ptr(2.3522), Email: "brand@example.com", SubscriptionStatus: models.SubscriptionStatusActive}
	f.store.offers[testOfferID] = &models.Offer{
		ID:                           testOfferID,
		BrandID:                      testBrandID,
		Title:                        "Brunch for two",
		Status:                       models.OfferStatusPublished,
		MaxClaims:                    5,
		DeadlineDaysAfterDelivery:    7,
		DeliverableType:              models.DeliverableTypeReels,
		AcceptanceFollowersThreshold: 2000,
		AboveThresholdAutoAccept:     true,
		Metadata:                     models.OfferMetadata{LocationRadiusKm: ptr(25.0), FulfillmentType: models.FulfillmentTypePickup},
		Brand:                        brand,
	}
	f.addCreator(testCreatorID, 5000)

	policy := StaticPolicy{Eligibility: eligibility.DefaultPolicy(), Lifecycle: DefaultLifecyclePolicy(), Buffer: DEFAULT_DELIVERABLE_BUFFER_DAYS}
	fulfillment := &ServiceFulfillment{f.commerce, f.shipments, f.notifier, logger.For("fulfillment")}
	clock := func() time.Time { return testNow }

	f.claims = &ServiceClaim{
		store:         f.store,
		strikes:       &ServiceStrike{f.strikes},
		subscriptions: f.subscriptions,
		limiter:       f.limiter,
		policy:        policy,
		fulfillment:   fulfillment,
		notifier:      f.notifier,
		codes:         campaigncode.NewGenerator(),
		now:           clock,
		log:           logger.For("claim"),
	}
	f.matches = &ServiceMatch{f.store, policy, fulfillment, clock, logger.For("match")}
	return f
}

func (f *claimFixture) addCreator(id int64, followers int) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.creators[id] = &models.Creator{
		ID:            id,
		DisplayName:   fmt.Sprintf("creator-%d", id),
		Email:         fmt.Sprintf("creator-%d@example.com", id),
		Latitude:      ptr(48.8606),
		Longitude:     ptr(2.3376),
		Country:       "FR",
		FollowerCount: ptr(followers),
	}
	f.store.accounts[id] = []models.SocialAccount{{
		ID:             id,
		CreatorID:      id,
		Platform:       models.PlatformTikTok,
		ExternalUserID: fmt.Sprintf("tt-%d", id),
		Handle:         fmt.Sprintf("creator%d", id),
		AccessToken:    "token",
	}}
}

func (f *claimFixture) offer() *models.Offer {
	return f.store.offers[testOfferID]
}
