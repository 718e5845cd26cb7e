package domain

// InventoryStatus summarises an inventory check.
type InventoryStatus string

const (
	InventoryAllAvailable    InventoryStatus = "all items available"
	InventorySomeUnavailable InventoryStatus = "some items unavailable"
)

func (s InventoryStatus) String() string {
	return string(s)
}

// Shortage describes an item requested beyond the available stock.
type Shortage struct {
	Requested int `json:"requested"`
	Available int `json:"available"`
}

// InventoryReport lists every item whose requested quantity exceeds stock.
type InventoryReport struct {
	Status  InventoryStatus
	Details map[string]Shortage
}

func (r InventoryReport) AllAvailable() bool {
	return r.Status == InventoryAllAvailable
}
