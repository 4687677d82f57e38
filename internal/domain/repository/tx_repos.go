package repository

import "context"

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Products       ProductRepository
	Customers      CustomerRepository
	Suppliers      SupplierRepository
	Statuses       StatusRepository
	SalesOrders    SalesOrderRepository
	PurchaseOrders PurchaseOrderRepository
	Transactions   InventoryTransactionRepository
}

type txKey struct{}

// WithTx marca ctx como perteneciente a una transacción abierta.
func WithTx(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, true)
}

// InTx indica si ctx ya está dentro de una transacción (no se permiten transacciones anidadas).
func InTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}
