package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/database"
	"go.uber.org/zap"
)

type PostgresRepository struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPostgresRepository(db *sql.DB, log *zap.Logger) *PostgresRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresRepository{db: db, log: log}
}

const (
	insertOrderQuery = `
		INSERT INTO orders (order_code, customer_name, customer_email, customer_mobile, subtotal, shipping_fee,
			total_amount, payment_method, payment_status, order_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING order_id
	`
	// zero rows means the variant is untracked or short of stock
	decrementStockQuery = `
		UPDATE product_variants
		SET stock = stock - $1, is_available = (stock - $1) > 0, updated_at = $2
		WHERE product_id = $3 AND color = $4 AND size = $5 AND stock >= $1
		RETURNING variant_id
	`
	variantStockQuery = `SELECT stock FROM product_variants WHERE product_id = $1 AND color = $2 AND size = $3`
	insertItemQuery   = `
		INSERT INTO order_items (order_id, product_id, variant_id, name, color, size, quantity, unit_price, line_total)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	insertAddressQuery = `
		INSERT INTO order_addresses (order_id, pincode, state, district, city, building_line, landmark, address_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	insertCustomizationQuery = `
		INSERT INTO order_customizations (order_id, logo_name, logo_type, logo_data)
		VALUES ($1,$2,$3,$4)
	`

	selectOrderColumns = `
		SELECT o.order_id, o.order_code, o.customer_name, o.customer_email, o.customer_mobile,
			o.subtotal, o.shipping_fee, o.total_amount, o.payment_method, o.payment_status, o.order_status,
			o.created_at, o.updated_at,
			COALESCE(a.pincode, ''), COALESCE(a.state, ''), COALESCE(a.district, ''), COALESCE(a.city, ''),
			COALESCE(a.building_line, ''), COALESCE(a.landmark, ''), COALESCE(a.address_type, 'home'),
			c.logo_name, c.logo_type, COALESCE(length(c.logo_data), 0)
		FROM orders o
		LEFT JOIN order_addresses a ON a.order_id = o.order_id
		LEFT JOIN order_customizations c ON c.order_id = o.order_id
	`
	getOrderByCodeQuery = selectOrderColumns + ` WHERE o.order_code = $1`
	listOrdersQuery     = selectOrderColumns + `
		WHERE ($1::text = '' OR o.order_status = $1::text)
		ORDER BY o.created_at DESC, o.order_id DESC
	`
	listItemsQuery = `
		SELECT order_id, product_id, COALESCE(variant_id, 0), name, color, size, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = ANY($1::bigint[])
		ORDER BY order_id, item_id
	`
	updateStatusQuery = `
		UPDATE orders
		SET order_status = $1, payment_status = $2, updated_at = $3
		WHERE order_code = $4 AND order_status = $5 AND payment_status = $6
	`
	orderExistsQuery = `SELECT order_id FROM orders WHERE order_code = $1`
	insertProofQuery = `
		INSERT INTO payment_proofs (order_id, content_type, data, note, created_at)
		SELECT order_id, $2, $3, $4, $5 FROM orders WHERE order_code = $1
	`
	latestProofQuery = `
		SELECT p.content_type, p.data, COALESCE(p.note, ''), p.created_at
		FROM payment_proofs p
		JOIN orders o ON o.order_id = p.order_id
		WHERE o.order_code = $1
		ORDER BY p.created_at DESC, p.proof_id DESC
		LIMIT 1
	`
)

// Create writes the order and its children in one transaction. Nothing is
// committed when any insert fails or a tracked variant is short of stock.
func (r *PostgresRepository) Create(ctx context.Context, ord Order) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, insertOrderQuery,
		ord.OrderCode, ord.Customer.Name, ord.Customer.Email, ord.Customer.Mobile,
		ord.Subtotal, ord.ShippingFee, ord.TotalAmount,
		string(ord.PaymentMethod), string(ord.PaymentStatus), string(ord.OrderStatus),
		ord.CreatedAt, ord.UpdatedAt,
	).Scan(&ord.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Order{}, ErrDuplicateOrder
		}
		return Order{}, err
	}

	items := make([]Item, len(ord.Items))
	copy(items, ord.Items)
	for i := range items {
		it := &items[i]
		vid, err := r.decrementStock(ctx, tx, *it, ord.CreatedAt)
		if err != nil {
			return Order{}, err
		}
		if vid == 0 {
			r.log.Info("untracked variant, stock not decremented",
				zap.String("order", ord.OrderCode),
				zap.Int("product", it.ProductID),
				zap.String("color", it.Color),
				zap.String("size", it.Size),
			)
		}
		it.VariantID = vid

		variant := sql.NullInt64{Int64: int64(vid), Valid: vid != 0}
		if _, err := tx.ExecContext(ctx, insertItemQuery,
			ord.ID, it.ProductID, variant, it.Name, it.Color, it.Size, it.Quantity, it.UnitPrice, it.LineTotal,
		); err != nil {
			return Order{}, err
		}
	}
	ord.Items = items

	a := ord.Address
	if _, err := tx.ExecContext(ctx, insertAddressQuery,
		ord.ID, a.Pincode, a.State, a.District, a.City, a.BuildingLine, a.Landmark, string(a.Type),
	); err != nil {
		return Order{}, err
	}

	if ord.Logo != nil {
		if _, err := tx.ExecContext(ctx, insertCustomizationQuery,
			ord.ID, ord.Logo.Name, ord.Logo.ContentType, ord.Logo.Data,
		); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

// decrementStock returns the variant id, or 0 when the catalog does not
// track the variant.
func (r *PostgresRepository) decrementStock(ctx context.Context, tx *sql.Tx, it Item, at time.Time) (int, error) {
	var vid int
	err := tx.QueryRowContext(ctx, decrementStockQuery, it.Quantity, at, it.ProductID, it.Color, it.Size).Scan(&vid)
	if err == nil {
		return vid, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var stock int
	err = tx.QueryRowContext(ctx, variantStockQuery, it.ProductID, it.Color, it.Size).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: %s %s/%s has %d left, %d ordered",
		ErrInsufficientStock, it.Name, it.Color, it.Size, stock, it.Quantity)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	var (
		o                   Order
		method, pay, status string
		addrType            string
		logoName, logoType  sql.NullString
		logoSize            int
	)
	err := scanner.Scan(&o.ID, &o.OrderCode, &o.Customer.Name, &o.Customer.Email, &o.Customer.Mobile,
		&o.Subtotal, &o.ShippingFee, &o.TotalAmount, &method, &pay, &status,
		&o.CreatedAt, &o.UpdatedAt,
		&o.Address.Pincode, &o.Address.State, &o.Address.District, &o.Address.City,
		&o.Address.BuildingLine, &o.Address.Landmark, &addrType,
		&logoName, &logoType, &logoSize)
	if err != nil {
		return Order{}, err
	}
	o.PaymentMethod = PaymentMethod(method)
	o.PaymentStatus = PaymentStatus(pay)
	o.OrderStatus = Status(status)
	o.Address.Type = address.Type(addrType)
	if logoName.Valid {
		o.Logo = &Customization{Name: logoName.String, ContentType: logoType.String, Size: logoSize}
	}
	o.Items = []Item{}
	return o, nil
}

// attachItems loads the line items of every order in one query.
func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, listItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID int64
			it      Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.VariantID, &it.Name, &it.Color, &it.Size,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByCodeQuery, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	one := []Order{o}
	if err := r.attachItems(ctx, one); err != nil {
		return Order{}, err
	}
	return one[0], nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersQuery, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, code string, from, to StatusPair, at time.Time) error {
	res, err := r.db.ExecContext(ctx, updateStatusQuery,
		string(to.Order), string(to.Payment), at, code, string(from.Order), string(from.Payment))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var id int64
	err = r.db.QueryRowContext(ctx, orderExistsQuery, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return ErrStatusConflict
}

func (r *PostgresRepository) AddProof(ctx context.Context, code string, p Proof) error {
	res, err := r.db.ExecContext(ctx, insertProofQuery, code, p.ContentType, p.Data, p.Note, p.CreatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepository) LatestProof(ctx context.Context, code string) (Proof, error) {
	var p Proof
	err := r.db.QueryRowContext(ctx, latestProofQuery, code).Scan(&p.ContentType, &p.Data, &p.Note, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var id int64
		if err := r.db.QueryRowContext(ctx, orderExistsQuery, code).Scan(&id); errors.Is(err, sql.ErrNoRows) {
			return Proof{}, ErrOrderNotFound
		}
		return Proof{}, ErrNoProof
	}
	return p, err
}
