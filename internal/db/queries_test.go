package db

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := Migrate(s.DB); err != nil {
		t.Fatal(err)
	}
	return s
}

func mustCreateUser(t *testing.T, q *Queries, email, role string) int64 {
	t.Helper()
	id, err := q.CreateUser(CreateUserParams{
		IdentityID:  "id-" + email,
		Email:       email,
		DisplayName: email,
		Role:        role,
		IsActive:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	q := s.Q

	if has, err := q.HasAnyAdmin(); err != nil || has {
		t.Fatalf("fresh db: HasAnyAdmin = %v, %v", has, err)
	}
	uid := mustCreateUser(t, q, "admin@example.com", "ADMIN")
	if has, err := q.HasAnyAdmin(); err != nil || !has {
		t.Fatalf("after admin create: HasAnyAdmin = %v, %v", has, err)
	}

	u, err := q.GetUserByID(uid)
	if err != nil || u == nil {
		t.Fatalf("GetUserByID: %v, %v", u, err)
	}
	if !u.IsActive || u.Role != "ADMIN" {
		t.Fatalf("unexpected user: %+v", u)
	}

	byIdent, err := q.GetUserByIdentityID("id-admin@example.com")
	if err != nil || byIdent == nil || byIdent.ID != uid {
		t.Fatalf("GetUserByIdentityID: %v, %v", byIdent, err)
	}

	if err := q.UpdateUser(UpdateUserParams{
		ID: uid, DisplayName: "Admin", Phone: "555-0100", Address: "1 Main St",
	}); err != nil {
		t.Fatal(err)
	}
	u, _ = q.GetUserByID(uid)
	if u.DisplayName != "Admin" || u.Phone != "555-0100" || u.Address != "1 Main St" {
		t.Fatalf("profile update lost: %+v", u)
	}

	if err := q.SetUserActive(uid, false); err != nil {
		t.Fatal(err)
	}
	u, _ = q.GetUserByID(uid)
	if u.IsActive {
		t.Fatal("user should be deactivated")
	}

	if missing, err := q.GetUserByEmail("nobody@example.com"); err != nil || missing != nil {
		t.Fatalf("missing user should scan as nil, nil: %v, %v", missing, err)
	}
}

func TestMenuVisibility(t *testing.T) {
	s := newTestStore(t)
	q := s.Q

	alice := mustCreateUser(t, q, "alice@example.com", "USER")
	bob := mustCreateUser(t, q, "bob@example.com", "USER")

	_, err := q.CreateMenuItem(CreateMenuItemParams{
		Name: "House Lager", PriceCents: 550, Category: "beer",
		InStock: true, IsLive: true, AssignAll: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	private, err := q.CreateMenuItem(CreateMenuItemParams{
		Name: "Barrel Reserve", PriceCents: 4200, Category: "whisky",
		InStock: true, IsLive: true, AssignAll: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.CreateMenuItem(CreateMenuItemParams{
		Name: "Hidden Draft", PriceCents: 500, Category: "beer",
		InStock: true, IsLive: false, AssignAll: true,
	}); err != nil {
		t.Fatal(err)
	}

	if err := q.ReplaceMenuAssignments(private, false, []int64{alice}); err != nil {
		t.Fatal(err)
	}

	names := func(items []MenuItem) map[string]bool {
		m := map[string]bool{}
		for _, it := range items {
			m[it.Name] = true
		}
		return m
	}

	forAlice, err := q.ListMenuItemsForUser(alice)
	if err != nil {
		t.Fatal(err)
	}
	got := names(forAlice)
	if !got["House Lager"] || !got["Barrel Reserve"] || got["Hidden Draft"] {
		t.Fatalf("alice sees %v", got)
	}

	forBob, err := q.ListMenuItemsForUser(bob)
	if err != nil {
		t.Fatal(err)
	}
	got = names(forBob)
	if !got["House Lager"] || got["Barrel Reserve"] {
		t.Fatalf("bob sees %v", got)
	}

	// Flipping back to assign_all clears the per-user list.
	if err := q.ReplaceMenuAssignments(private, true, nil); err != nil {
		t.Fatal(err)
	}
	ids, err := q.GetMenuAssignments(private)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("assignments should be cleared, got %v", ids)
	}
	forBob, _ = q.ListMenuItemsForUser(bob)
	if !names(forBob)["Barrel Reserve"] {
		t.Fatal("assign_all item should be visible to everyone")
	}

	all, err := q.ListMenuItems("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("back office sees %d items, want 3", len(all))
	}
	filtered, err := q.ListMenuItems("lager")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Name != "House Lager" {
		t.Fatalf("search result: %+v", filtered)
	}
}

func TestCreateOrderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	q := s.Q

	uid := mustCreateUser(t, q, "alice@example.com", "USER")
	item, err := q.CreateMenuItem(CreateMenuItemParams{
		Name: "House Lager", PriceCents: 550, Category: "beer",
		InStock: true, IsLive: true, AssignAll: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	oid, err := q.CreateOrder(CreateOrderParams{
		OrderRef:      "REF12345",
		UserID:        uid,
		TotalCents:    1100,
		DeliveryDate:  "2025-03-03",
		DeliveryTime:  "09:00",
		PaymentMethod: "card",
		PaymentTxnID:  "txn-1",
		Items: []OrderItemParams{
			{MenuItemID: item, Name: "House Lager", UnitPriceCents: 550, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	o, err := q.GetOrderByID(oid)
	if err != nil || o == nil {
		t.Fatalf("GetOrderByID: %v, %v", o, err)
	}
	if o.Status != OrderStatusPaid {
		t.Errorf("new order status = %q, want %q", o.Status, OrderStatusPaid)
	}
	if o.TotalCents != 1100 || o.OrderRef != "REF12345" {
		t.Errorf("unexpected order: %+v", o)
	}
	if o.UserDisplayName != "alice@example.com" {
		t.Errorf("display name not joined: %q", o.UserDisplayName)
	}

	items, err := q.ListOrderItems(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Quantity != 2 || items[0].UnitPriceCents != 550 {
		t.Fatalf("order items: %+v", items)
	}
	if items[0].MenuItemID == nil || *items[0].MenuItemID != item {
		t.Fatalf("menu item link lost: %+v", items[0])
	}

	events, err := q.ListOrderEvents(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ToStatus != OrderStatusPaid {
		t.Fatalf("creation event missing: %+v", events)
	}

	// Deleting the menu item keeps the order line, with the link nulled.
	if err := q.DeleteMenuItem(item); err != nil {
		t.Fatal(err)
	}
	items, err = q.ListOrderItems(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].MenuItemID != nil {
		t.Fatalf("order line after item delete: %+v", items)
	}
}

func TestUpdateOrderStatusAppendsEvent(t *testing.T) {
	s := newTestStore(t)
	q := s.Q

	uid := mustCreateUser(t, q, "alice@example.com", "USER")
	admin := mustCreateUser(t, q, "admin@example.com", "ADMIN")

	oid, err := q.CreateOrder(CreateOrderParams{
		OrderRef: "REF00001", UserID: uid, TotalCents: 550,
		DeliveryDate: "2025-03-03", DeliveryTime: "09:00",
		PaymentMethod: "card", PaymentTxnID: "txn-1",
		Items: []OrderItemParams{{Name: "House Lager", UnitPriceCents: 550, Quantity: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := q.UpdateOrderStatus(oid, OrderStatusPaid, OrderStatusProcessing, &admin); err != nil {
		t.Fatal(err)
	}
	o, _ := q.GetOrderByID(oid)
	if o.Status != OrderStatusProcessing {
		t.Fatalf("status = %q, want %q", o.Status, OrderStatusProcessing)
	}

	events, err := q.ListOrderEvents(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	last := events[1]
	if last.FromStatus != OrderStatusPaid || last.ToStatus != OrderStatusProcessing {
		t.Fatalf("transition event: %+v", last)
	}
	if last.ChangedByUserID == nil || *last.ChangedByUserID != admin {
		t.Fatalf("changed_by not recorded: %+v", last)
	}

	byStatus, err := q.ListOrders(OrderStatusProcessing)
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != oid {
		t.Fatalf("status filter: %+v", byStatus)
	}
	if none, _ := q.ListOrders(OrderStatusDelivered); len(none) != 0 {
		t.Fatalf("expected no delivered orders, got %+v", none)
	}
}

func TestTickets(t *testing.T) {
	s := newTestStore(t)
	q := s.Q

	uid := mustCreateUser(t, q, "alice@example.com", "USER")
	tid, err := q.CreateTicket(CreateTicketParams{
		UserID: uid, Subject: "Late delivery", Category: "delivery",
		Priority: "high", Description: "Order never arrived.",
	})
	if err != nil {
		t.Fatal(err)
	}

	tk, err := q.GetTicketByID(tid)
	if err != nil || tk == nil {
		t.Fatalf("GetTicketByID: %v, %v", tk, err)
	}
	if tk.Status != TicketStatusOpen {
		t.Fatalf("new ticket status = %q, want %q", tk.Status, TicketStatusOpen)
	}

	if err := q.UpdateTicket(tid, TicketStatusResolved, "Refund issued."); err != nil {
		t.Fatal(err)
	}
	tk, _ = q.GetTicketByID(tid)
	if tk.Status != TicketStatusResolved || tk.AdminResponse != "Refund issued." {
		t.Fatalf("after update: %+v", tk)
	}

	mine, err := q.ListTicketsForUser(uid)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListTicketsForUser: %v, %v", mine, err)
	}
	open, err := q.ListTickets(TicketStatusOpen)
	if err != nil || len(open) != 0 {
		t.Fatalf("no open tickets expected: %v, %v", open, err)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	q := s.Q

	if v, err := q.GetSetting("delivery_schedule"); err != nil || v != "" {
		t.Fatalf("missing setting should read as empty: %q, %v", v, err)
	}
	if err := q.SetSetting("delivery_schedule", `{"a":1}`); err != nil {
		t.Fatal(err)
	}
	if err := q.SetSetting("delivery_schedule", `{"a":2}`); err != nil {
		t.Fatal(err)
	}
	if v, _ := q.GetSetting("delivery_schedule"); v != `{"a":2}` {
		t.Fatalf("upsert lost: %q", v)
	}
}

func TestSeedCatalogIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := SeedCatalog(s.DB); err != nil {
		t.Fatal(err)
	}
	first, err := s.Q.ListMenuItems("")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) == 0 {
		t.Fatal("seed produced no items")
	}
	if err := SeedCatalog(s.DB); err != nil {
		t.Fatal(err)
	}
	second, err := s.Q.ListMenuItems("")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != len(first) {
		t.Fatalf("seed is not idempotent: %d then %d items", len(first), len(second))
	}
}
