package repository

// Repos agrupa los puertos documentales que participan en una transacción de
// sincronización. El TxRunner entrega una instancia atada a la transacción;
// si el callback falla, todo lo escrito a través de ella se revierte.
type Repos struct {
	SalesOrders    SalesOrderRepository
	SalesInvoices  SalesInvoiceRepository
	DeliveryNotes  DeliveryNoteRepository
	PaymentEntries PaymentEntryRepository
	Customers      CustomerRepository
	EcommerceItems EcommerceItemRepository
	Items          ItemRepository
}
