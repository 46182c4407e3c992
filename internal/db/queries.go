package db

import (
	"database/sql"
	"strings"
	"time"
)

type Queries struct {
	db *sql.DB
}

func unixNow() int64 { return time.Now().Unix() }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func i2b(i int) bool { return i != 0 }

func tFromUnix(u int64) time.Time {
	if u <= 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

/* ---------------- Users ---------------- */

func (q *Queries) HasAnyAdmin() (bool, error) {
	row := q.db.QueryRow(`SELECT COUNT(1) FROM users WHERE role='ADMIN'`)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var isActive int
	var ca, ua int64
	if err := row.Scan(&u.ID, &u.IdentityID, &u.Email, &u.DisplayName, &u.Phone, &u.Address, &u.Role, &isActive, &ca, &ua); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.IsActive = i2b(isActive)
	u.CreatedAt = tFromUnix(ca)
	u.UpdatedAt = tFromUnix(ua)
	return &u, nil
}

const userCols = `id,identity_id,email,display_name,phone,address,role,is_active,created_at,updated_at`

func (q *Queries) GetUserByID(id int64) (*User, error) {
	return scanUser(q.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id=?`, id))
}

func (q *Queries) GetUserByIdentityID(identityID string) (*User, error) {
	return scanUser(q.db.QueryRow(`SELECT `+userCols+` FROM users WHERE identity_id=?`, identityID))
}

func (q *Queries) GetUserByEmail(email string) (*User, error) {
	return scanUser(q.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email=?`, email))
}

func (q *Queries) ListUsers() ([]User, error) {
	rows, err := q.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (q *Queries) CreateUser(p CreateUserParams) (int64, error) {
	res, err := q.db.Exec(`
		INSERT INTO users(identity_id,email,display_name,phone,address,role,is_active,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		p.IdentityID, p.Email, p.DisplayName, p.Phone, p.Address, p.Role, b2i(p.IsActive), unixNow(), unixNow())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateUser(p UpdateUserParams) error {
	_, err := q.db.Exec(`
		UPDATE users SET display_name=?, phone=?, address=?, updated_at=? WHERE id=?`,
		p.DisplayName, p.Phone, p.Address, unixNow(), p.ID)
	return err
}

func (q *Queries) SetUserActive(id int64, active bool) error {
	_, err := q.db.Exec(`UPDATE users SET is_active=?, updated_at=? WHERE id=?`, b2i(active), unixNow(), id)
	return err
}

func (q *Queries) DeleteUser(id int64) error {
	_, err := q.db.Exec(`DELETE FROM users WHERE id=?`, id)
	return err
}

/* ---------------- Menu items ---------------- */

const menuCols = `
	m.id,
	COALESCE(m.name,'') AS name,
	COALESCE(m.ingredients,'') AS ingredients,
	COALESCE(m.unit_size,'') AS unit_size,
	m.abv_percent,
	COALESCE(m.price_cents,0) AS price_cents,
	COALESCE(m.category,'') AS category,
	COALESCE(m.image_path,'') AS image_path,
	COALESCE(m.in_stock,0) AS in_stock,
	COALESCE(m.is_live,0) AS is_live,
	COALESCE(m.assign_all,1) AS assign_all,
	m.created_at,m.updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (*MenuItem, error) {
	var m MenuItem
	var inStock, isLive, assignAll int
	var ca, ua int64
	if err := row.Scan(&m.ID, &m.Name, &m.Ingredients, &m.UnitSize, &m.ABVPercent, &m.PriceCents, &m.Category, &m.ImagePath, &inStock, &isLive, &assignAll, &ca, &ua); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m.InStock = i2b(inStock)
	m.IsLive = i2b(isLive)
	m.AssignAll = i2b(assignAll)
	m.CreatedAt = tFromUnix(ca)
	m.UpdatedAt = tFromUnix(ua)
	return &m, nil
}

// ListMenuItems returns the full catalog for the back office, optionally
// filtered by a name/category substring.
func (q *Queries) ListMenuItems(search string) ([]MenuItem, error) {
	search = strings.TrimSpace(strings.ToLower(search))
	var rows *sql.Rows
	var err error
	if search == "" {
		rows, err = q.db.Query(`SELECT ` + menuCols + ` FROM menu_items m ORDER BY m.category, m.name`)
	} else {
		like := "%" + search + "%"
		rows, err = q.db.Query(`SELECT `+menuCols+`
			FROM menu_items m
			WHERE lower(m.name) LIKE ? OR lower(m.category) LIKE ?
			ORDER BY m.category, m.name`, like, like)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// ListMenuItemsForUser returns live items that are assigned to everyone or to
// this specific user.
func (q *Queries) ListMenuItemsForUser(userID int64) ([]MenuItem, error) {
	rows, err := q.db.Query(`SELECT `+menuCols+`
		FROM menu_items m
		WHERE m.is_live = 1
		  AND (m.assign_all = 1 OR EXISTS (
			SELECT 1 FROM menu_assignments ma
			WHERE ma.item_id = m.id AND ma.user_id = ?
		  ))
		ORDER BY m.category, m.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (q *Queries) GetMenuItemByID(id int64) (*MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(`SELECT `+menuCols+` FROM menu_items m WHERE m.id=?`, id))
}

func (q *Queries) CreateMenuItem(p CreateMenuItemParams) (int64, error) {
	res, err := q.db.Exec(`
		INSERT INTO menu_items(name,ingredients,unit_size,abv_percent,price_cents,category,in_stock,is_live,assign_all,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Ingredients, p.UnitSize, p.ABVPercent, p.PriceCents, p.Category, b2i(p.InStock), b2i(p.IsLive), b2i(p.AssignAll), unixNow(), unixNow())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateMenuItem(p UpdateMenuItemParams) error {
	_, err := q.db.Exec(`
		UPDATE menu_items
		SET name=?, ingredients=?, unit_size=?, abv_percent=?, price_cents=?, category=?, in_stock=?, is_live=?, assign_all=?, updated_at=?
		WHERE id=?`,
		p.Name, p.Ingredients, p.UnitSize, p.ABVPercent, p.PriceCents, p.Category, b2i(p.InStock), b2i(p.IsLive), b2i(p.AssignAll), unixNow(), p.ID)
	return err
}

func (q *Queries) DeleteMenuItem(id int64) error {
	_, err := q.db.Exec(`DELETE FROM menu_items WHERE id=?`, id)
	return err
}

func (q *Queries) SetMenuItemLive(id int64, live bool) error {
	_, err := q.db.Exec(`UPDATE menu_items SET is_live=?, updated_at=? WHERE id=?`, b2i(live), unixNow(), id)
	return err
}

func (q *Queries) SetMenuItemInStock(id int64, inStock bool) error {
	_, err := q.db.Exec(`UPDATE menu_items SET in_stock=?, updated_at=? WHERE id=?`, b2i(inStock), unixNow(), id)
	return err
}

func (q *Queries) SetMenuItemImage(id int64, imagePath string) error {
	_, err := q.db.Exec(`UPDATE menu_items SET image_path=?, updated_at=? WHERE id=?`, imagePath, unixNow(), id)
	return err
}

// ReplaceMenuAssignments swaps the per-user assignment list and flips the
// assign_all flag in one transaction.
func (q *Queries) ReplaceMenuAssignments(itemID int64, assignAll bool, userIDs []int64) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM menu_assignments WHERE item_id=?`, itemID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if !assignAll {
		for _, uid := range userIDs {
			if uid <= 0 {
				continue
			}
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO menu_assignments(item_id,user_id) VALUES(?,?)`, itemID, uid); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	if _, err := tx.Exec(`UPDATE menu_items SET assign_all=?, updated_at=? WHERE id=?`, b2i(assignAll), unixNow(), itemID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (q *Queries) GetMenuAssignments(itemID int64) ([]int64, error) {
	rows, err := q.db.Query(`SELECT user_id FROM menu_assignments WHERE item_id=? ORDER BY user_id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

/* ---------------- Orders ---------------- */

func (q *Queries) CreateOrder(p CreateOrderParams) (int64, error) {
	tx, err := q.db.Begin()
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(`
		INSERT INTO orders(order_ref,user_id,total_cents,delivery_date,delivery_time,status,payment_method,payment_txn_id,created_at,updated_at)
		VALUES(?,?,?,?,?,'PAID',?,?,?,?)`,
		p.OrderRef, p.UserID, p.TotalCents, p.DeliveryDate, p.DeliveryTime, p.PaymentMethod, p.PaymentTxnID, unixNow(), unixNow())
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	id, _ := res.LastInsertId()

	for _, it := range p.Items {
		var mid any
		if it.MenuItemID > 0 {
			mid = it.MenuItemID
		}
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id,menu_item_id,name,unit_price_cents,quantity)
			VALUES(?,?,?,?,?)`, id, mid, it.Name, it.UnitPriceCents, it.Quantity); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO order_events(order_id,from_status,to_status,changed_by_user_id,created_at)
		VALUES(?, '', 'PAID', ?, ?)`, id, p.UserID, unixNow()); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	return id, tx.Commit()
}

const orderCols = `
	o.id,COALESCE(o.order_ref,''),o.user_id,COALESCE(o.total_cents,0),
	COALESCE(o.delivery_date,''),COALESCE(o.delivery_time,''),COALESCE(o.status,''),
	COALESCE(o.payment_method,''),COALESCE(o.payment_txn_id,''),
	o.created_at,o.updated_at,
	COALESCE(u.display_name,'')`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var ca, ua int64
	if err := row.Scan(&o.ID, &o.OrderRef, &o.UserID, &o.TotalCents,
		&o.DeliveryDate, &o.DeliveryTime, &o.Status,
		&o.PaymentMethod, &o.PaymentTxnID, &ca, &ua,
		&o.UserDisplayName); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	o.CreatedAt = tFromUnix(ca)
	o.UpdatedAt = tFromUnix(ua)
	return &o, nil
}

func (q *Queries) GetOrderByID(id int64) (*Order, error) {
	return scanOrder(q.db.QueryRow(`
		SELECT `+orderCols+`
		FROM orders o
		JOIN users u ON u.id=o.user_id
		WHERE o.id=?`, id))
}

func (q *Queries) ListOrdersForUser(userID int64) ([]Order, error) {
	rows, err := q.db.Query(`
		SELECT `+orderCols+`
		FROM orders o
		JOIN users u ON u.id=o.user_id
		WHERE o.user_id=?
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ListOrders returns all orders for the back office, newest first, optionally
// filtered by status.
func (q *Queries) ListOrders(status string) ([]Order, error) {
	status = strings.TrimSpace(strings.ToUpper(status))
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = q.db.Query(`
			SELECT ` + orderCols + `
			FROM orders o
			JOIN users u ON u.id=o.user_id
			ORDER BY o.created_at DESC`)
	} else {
		rows, err = q.db.Query(`
			SELECT `+orderCols+`
			FROM orders o
			JOIN users u ON u.id=o.user_id
			WHERE o.status=?
			ORDER BY o.created_at DESC`, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (q *Queries) ListOrderItems(orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(`
		SELECT id,order_id,menu_item_id,COALESCE(name,''),COALESCE(unit_price_cents,0),COALESCE(quantity,1)
		FROM order_items WHERE order_id=? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		var mid sql.NullInt64
		if err := rows.Scan(&it.ID, &it.OrderID, &mid, &it.Name, &it.UnitPriceCents, &it.Quantity); err != nil {
			return nil, err
		}
		if mid.Valid {
			it.MenuItemID = &mid.Int64
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateOrderStatus(orderID int64, from, to string, changedBy *int64) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE orders SET status=?, updated_at=? WHERE id=?`, to, unixNow(), orderID); err != nil {
		_ = tx.Rollback()
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO order_events(order_id,from_status,to_status,changed_by_user_id,created_at)
		VALUES(?,?,?,?,?)`, orderID, from, to, changedBy, unixNow())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (q *Queries) ListOrderEvents(orderID int64) ([]OrderEvent, error) {
	rows, err := q.db.Query(`
		SELECT
			e.id,e.order_id,COALESCE(e.from_status,''),COALESCE(e.to_status,''),e.changed_by_user_id,e.created_at,
			COALESCE(u.display_name,'')
		FROM order_events e
		LEFT JOIN users u ON u.id=e.changed_by_user_id
		WHERE e.order_id=?
		ORDER BY e.created_at ASC, e.id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderEvent
	for rows.Next() {
		var e OrderEvent
		var cb sql.NullInt64
		var ca int64
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &cb, &ca, &e.ChangedByName); err != nil {
			return nil, err
		}
		if cb.Valid {
			e.ChangedByUserID = &cb.Int64
		}
		e.CreatedAt = tFromUnix(ca)
		out = append(out, e)
	}
	return out, rows.Err()
}

/* ---------------- Support tickets ---------------- */

const ticketCols = `
	t.id,t.user_id,COALESCE(t.subject,''),COALESCE(t.category,'general'),COALESCE(t.priority,'normal'),
	COALESCE(t.description,''),COALESCE(t.status,'OPEN'),COALESCE(t.admin_response,''),
	t.created_at,t.updated_at,
	COALESCE(u.display_name,'')`

func scanTicket(row interface{ Scan(...any) error }) (*SupportTicket, error) {
	var t SupportTicket
	var ca, ua int64
	if err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Category, &t.Priority,
		&t.Description, &t.Status, &t.AdminResponse, &ca, &ua, &t.UserDisplayName); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.CreatedAt = tFromUnix(ca)
	t.UpdatedAt = tFromUnix(ua)
	return &t, nil
}

func (q *Queries) CreateTicket(p CreateTicketParams) (int64, error) {
	res, err := q.db.Exec(`
		INSERT INTO support_tickets(user_id,subject,category,priority,description,status,created_at,updated_at)
		VALUES(?,?,?,?,?,'OPEN',?,?)`,
		p.UserID, p.Subject, p.Category, p.Priority, p.Description, unixNow(), unixNow())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetTicketByID(id int64) (*SupportTicket, error) {
	return scanTicket(q.db.QueryRow(`
		SELECT `+ticketCols+`
		FROM support_tickets t
		JOIN users u ON u.id=t.user_id
		WHERE t.id=?`, id))
}

func (q *Queries) ListTicketsForUser(userID int64) ([]SupportTicket, error) {
	rows, err := q.db.Query(`
		SELECT `+ticketCols+`
		FROM support_tickets t
		JOIN users u ON u.id=t.user_id
		WHERE t.user_id=?
		ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (q *Queries) ListTickets(status string) ([]SupportTicket, error) {
	status = strings.TrimSpace(strings.ToUpper(status))
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = q.db.Query(`
			SELECT ` + ticketCols + `
			FROM support_tickets t
			JOIN users u ON u.id=t.user_id
			ORDER BY t.created_at DESC`)
	} else {
		rows, err = q.db.Query(`
			SELECT `+ticketCols+`
			FROM support_tickets t
			JOIN users u ON u.id=t.user_id
			WHERE t.status=?
			ORDER BY t.created_at DESC`, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateTicket(id int64, status, adminResponse string) error {
	_, err := q.db.Exec(`
		UPDATE support_tickets SET status=?, admin_response=?, updated_at=? WHERE id=?`,
		status, adminResponse, unixNow(), id)
	return err
}

/* ---------------- Admin settings ---------------- */

func (q *Queries) GetSetting(key string) (string, error) {
	row := q.db.QueryRow(`SELECT value FROM admin_settings WHERE key=?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (q *Queries) SetSetting(key, value string) error {
	_, err := q.db.Exec(`
		INSERT INTO admin_settings(key,value,updated_at) VALUES(?,?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, unixNow())
	return err
}
