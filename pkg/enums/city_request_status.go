package enums

type CityRequestStatus string

const (
	CityRequestStatusPending   CityRequestStatus = "pending"
	CityRequestStatusContacted CityRequestStatus = "contacted"
	CityRequestStatusClosed    CityRequestStatus = "closed"
)

var cityRequestStatuses = []CityRequestStatus{
	CityRequestStatusPending, CityRequestStatusContacted, CityRequestStatusClosed,
}

func (c CityRequestStatus) String() string { return string(c) }
func (c CityRequestStatus) IsValid() bool  { return known(cityRequestStatuses, c) }

func ParseCityRequestStatus(raw string) (CityRequestStatus, error) {
	return parse("city request status", cityRequestStatuses, raw)
}
