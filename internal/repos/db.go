package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog if DB is empty (promotions/components/suppliers)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Promotions, stored flat; see promotion.Record
CREATE TABLE IF NOT EXISTS promotions(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  valid_from TEXT,
  valid_to TEXT,
  base_type TEXT,
  n INTEGER,
  m INTEGER,
  flat_percent TEXT,
  accumulable_type TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS promotion_tiers(
  promotion_id TEXT NOT NULL REFERENCES promotions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  min_quantity INTEGER NOT NULL,
  discount_percent TEXT NOT NULL,
  PRIMARY KEY(promotion_id, position)
);

-- Catalog
CREATE TABLE IF NOT EXISTS components(
  id TEXT PRIMARY KEY,
  description TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  attribute TEXT NOT NULL DEFAULT '',
  cost TEXT NOT NULL DEFAULT '0',
  base_price TEXT NOT NULL,
  promotion_id TEXT NULL REFERENCES promotions(id) ON DELETE SET NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_components_category  ON components(category);
CREATE INDEX IF NOT EXISTS idx_components_promotion ON components(promotion_id);

-- Suppliers
CREATE TABLE IF NOT EXISTS suppliers(
  supplier_key TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  legal_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS supplier_stock(
  supplier_key TEXT NOT NULL REFERENCES suppliers(supplier_key) ON DELETE CASCADE,
  component_id TEXT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
  qty INTEGER NOT NULL DEFAULT 0 CHECK (qty >= 0),
  updated_at TEXT,
  PRIMARY KEY(supplier_key, component_id)
);

-- Quotations (immutable once written)
CREATE TABLE IF NOT EXISTS quotations(
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL,
  jurisdiction TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  tax TEXT NOT NULL,
  total TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_quotations_created_at ON quotations(created_at);

CREATE TABLE IF NOT EXISTS quotation_lines(
  quotation_id TEXT NOT NULL REFERENCES quotations(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  component_id TEXT NOT NULL REFERENCES components(id),
  description TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_base_price TEXT NOT NULL,
  unit_net_price TEXT NOT NULL,
  unit_discount TEXT NOT NULL,
  discounts_json TEXT NOT NULL DEFAULT '[]',
  subtotal TEXT NOT NULL,
  PRIMARY KEY (quotation_id, position)
);

-- Purchase orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  quotation_id TEXT NOT NULL REFERENCES quotations(id),
  supplier_key TEXT NOT NULL REFERENCES suppliers(supplier_key),
  supplier_name TEXT NOT NULL,
  emission_date TEXT NOT NULL,
  delivery_date TEXT NOT NULL DEFAULT '',
  fulfillment_percent INTEGER NOT NULL CHECK (fulfillment_percent BETWEEN 0 AND 100),
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE','CANCELLED')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_quotation ON orders(quotation_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_active_triple
  ON orders(quotation_id, supplier_key, fulfillment_percent) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS order_lines(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  component_id TEXT NOT NULL REFERENCES components(id),
  description TEXT NOT NULL,
  requested_quantity INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  unit_price TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  PRIMARY KEY (order_id, position)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM components`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo promotions/components/suppliers/stock")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO promotions(id,name,description,base_type,n,m,flat_percent,accumulable_type) VALUES
	  ('PROMO-3X2','3x2 en tarjetas de video','Compra 3, paga 2','buy_n_pay_m',3,2,NULL,NULL),
	  ('PROMO-VOLUMEN','Descuento por volumen','Escalonado por cantidad','none',1,1,NULL,'tiered_quantity'),
	  ('PROMO-GABINETE-20','Gabinetes 20%','Capturada como base (historico)','buy_n_pay_m',1,1,'20',NULL)`)

	tx.MustExec(`INSERT INTO promotion_tiers(promotion_id,position,min_quantity,discount_percent) VALUES
	  ('PROMO-VOLUMEN',0,1,'0'),
	  ('PROMO-VOLUMEN',1,10,'5'),
	  ('PROMO-VOLUMEN',2,50,'15')`)

	tx.MustExec(`INSERT INTO components(id,description,brand,model,category,attribute,cost,base_price,promotion_id) VALUES
	  ('gpu-rtx4060','Tarjeta de video RTX 4060','NVIDIA','RTX 4060','gpu','8GB GDDR6','780.00','1000.00','PROMO-3X2'),
	  ('ssd-1tb','Unidad de estado solido 1TB','Kingston','NV2','storage','1TB','62.00','100.00','PROMO-VOLUMEN'),
	  ('case-atx','Gabinete ATX','Corsair','4000D','case','ATX','31.00','50.00','PROMO-GABINETE-20'),
	  ('ram-16','Memoria DDR4 16GB','Crucial','CT16G4','ram','16GB','30.00','45.50',NULL),
	  ('cpu-r5','Procesador Ryzen 5 5600','AMD','5600','cpu','6 nucleos','120.00','159.99',NULL)`)

	tx.MustExec(`INSERT INTO suppliers(supplier_key,name,legal_name) VALUES
	  ('PROV-NORTE','Distribuidora Norte','Distribuidora Norte SA de CV'),
	  ('PROV-CENTRO','Mayoreo Centro','Mayoreo de Computo del Centro SA de CV')`)

	tx.MustExec(`INSERT INTO supplier_stock(supplier_key,component_id,qty) VALUES
	  ('PROV-NORTE','gpu-rtx4060',12),
	  ('PROV-NORTE','ssd-1tb',3),
	  ('PROV-NORTE','ram-16',0),
	  ('PROV-CENTRO','gpu-rtx4060',2),
	  ('PROV-CENTRO','case-atx',40)`)

	return tx.Commit()
}
