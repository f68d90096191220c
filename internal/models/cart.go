package models

// BookingPhase represents the current step in the customer's checkout journey
type BookingPhase string

const (
	PhaseBrowsing        BookingPhase = "browsing"
	PhaseCheckout        BookingPhase = "checkout"
	PhaseCustomerInfo    BookingPhase = "customer_info"
	PhaseContractPending BookingPhase = "contract_pending"
	PhaseCreativePending BookingPhase = "creative_pending"
	PhaseConfirmed       BookingPhase = "confirmed"
)

// phaseTransitions defines the allowed forward/backward moves between
// booking phases. Contract and creative steps are part of the same
// machine so an invalid combination (confirmed without a signed
// contract) cannot be represented.
var phaseTransitions = map[BookingPhase][]BookingPhase{
	PhaseBrowsing:        {PhaseCheckout},
	PhaseCheckout:        {PhaseBrowsing, PhaseCustomerInfo},
	PhaseCustomerInfo:    {PhaseContractPending, PhaseConfirmed},
	PhaseContractPending: {PhaseCreativePending, PhaseConfirmed},
	PhaseCreativePending: {PhaseConfirmed},
	PhaseConfirmed:       {},
}

// cartRequiredPhases are the targets that cannot be entered with an
// empty cart.
var cartRequiredPhases = map[BookingPhase]bool{
	PhaseCheckout:     true,
	PhaseCustomerInfo: true,
}

// CartItem represents one selected campaign booking line
type CartItem struct {
	CampaignID     int    `json:"campaign_id"`
	CampaignName   string `json:"campaign_name"`
	Date           string `json:"date"` // UK-formatted, display + grouping
	Time           string `json:"time"`
	SlotsRequired  int    `json:"slots_required"`
	PricePerSlot   int    `json:"price_per_slot"` // pence
	TotalPrice     int    `json:"total_price"`    // pence, always PricePerSlot * SlotsRequired
	AdvertsPerSlot int    `json:"adverts_per_slot"`
	IconURL        string `json:"icon_url,omitempty"`
}

// Cart represents a customer's in-progress campaign selection. All
// mutations go through its methods so the TotalPrice invariant and the
// phase machine stay consistent.
type Cart struct {
	Items []CartItem   `json:"items"`
	Phase BookingPhase `json:"phase"`
}

// NewCart creates an empty cart in the browsing phase
func NewCart() *Cart {
	return &Cart{Phase: PhaseBrowsing}
}

// CurrentPhase returns the cart's phase, defaulting to browsing for
// carts deserialized from older sessions.
func (c *Cart) CurrentPhase() BookingPhase {
	if c.Phase == "" {
		return PhaseBrowsing
	}
	return c.Phase
}

// AddItem adds a campaign selection to the cart. Re-adding the same
// campaign increments its slot count instead of duplicating the line.
func (c *Cart) AddItem(item CartItem) error {
	if item.SlotsRequired < 1 {
		return ErrInvalidInput
	}
	if item.PricePerSlot < 0 {
		return ErrInvalidInput
	}

	for i := range c.Items {
		if c.Items[i].CampaignID == item.CampaignID {
			c.Items[i].SlotsRequired += item.SlotsRequired
			c.Items[i].TotalPrice = c.Items[i].PricePerSlot * c.Items[i].SlotsRequired
			return nil
		}
	}

	item.TotalPrice = item.PricePerSlot * item.SlotsRequired
	c.Items = append(c.Items, item)
	return nil
}

// UpdateItem sets the slot count for a campaign. A count of zero or
// less removes the line entirely.
func (c *Cart) UpdateItem(campaignID, slots int) {
	if slots <= 0 {
		c.RemoveItem(campaignID)
		return
	}

	for i := range c.Items {
		if c.Items[i].CampaignID == campaignID {
			c.Items[i].SlotsRequired = slots
			c.Items[i].TotalPrice = c.Items[i].PricePerSlot * slots
			return
		}
	}
}

// RemoveItem removes a campaign line. Removing an absent campaign is a
// no-op, not an error.
func (c *Cart) RemoveItem(campaignID int) {
	for i := range c.Items {
		if c.Items[i].CampaignID == campaignID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart and resets the phase to browsing
func (c *Cart) Clear() {
	c.Items = nil
	c.Phase = PhaseBrowsing
}

// IsEmpty returns true if the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalItems returns the number of distinct campaigns in the cart.
// This is the count shown in the "Cart (N)" header; use TotalSlots for
// the slot sum.
func (c *Cart) TotalItems() int {
	return len(c.Items)
}

// TotalSlots returns the sum of slots across all lines
func (c *Cart) TotalSlots() int {
	total := 0
	for _, item := range c.Items {
		total += item.SlotsRequired
	}
	return total
}

// Subtotal returns the cart subtotal in pence
func (c *Cart) Subtotal() int {
	total := 0
	for _, item := range c.Items {
		total += item.TotalPrice
	}
	return total
}

// CompleteCheckout hands the cart's lines over to a created booking:
// the items empty and the phase moves into the contract step. Fails
// with ErrInvalidPhaseTransition unless the cart is in customer-info.
func (c *Cart) CompleteCheckout() error {
	if err := c.Advance(PhaseContractPending); err != nil {
		return err
	}
	c.Items = nil
	return nil
}

// Advance moves the cart to the given phase. Entering checkout or
// customer-info with an empty cart returns ErrEmptyCart and leaves the
// phase unchanged; a move not in the transition table returns
// ErrInvalidPhaseTransition.
func (c *Cart) Advance(to BookingPhase) error {
	if cartRequiredPhases[to] && c.IsEmpty() {
		return ErrEmptyCart
	}

	from := c.CurrentPhase()
	for _, allowed := range phaseTransitions[from] {
		if allowed == to {
			c.Phase = to
			return nil
		}
	}
	return ErrInvalidPhaseTransition
}
