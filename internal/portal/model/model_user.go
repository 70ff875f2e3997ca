package model

// User 後台帳號。RoleId 為權限查詢的主體。
type User struct {
	BaseModel
	UserId    string `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	Username  string `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Password  string `gorm:"column:password;not null" json:"-"`
	Nickname  string `gorm:"column:nickname" json:"nickname"`
	Email     string `gorm:"column:email" json:"email"`
	Phone     string `gorm:"column:phone" json:"phone"`
	RoleId    string `gorm:"column:role_id;not null;index" json:"roleId"`
	IsEnabled int    `gorm:"column:is_enabled;not null;default:1" json:"isEnabled"`
}

func (u *User) TableName() string {
	return "t_user"
}

// Login 登入請求。
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"` // base64 編碼
}

// UserInfo 對外的用戶資訊，不含密碼。
type UserInfo struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RoleId   string `json:"roleId"`
}

// LoginResp 登入回應：用戶資訊 + 令牌對。
type LoginResp struct {
	UserInfo UserInfo          `json:"userInfo"`
	Token    map[string]string `json:"token"`
}

// ToUserInfo 轉為對外用戶資訊。
func (u *User) ToUserInfo() UserInfo {
	return UserInfo{
		UserId:   u.UserId,
		Username: u.Username,
		Nickname: u.Nickname,
		Email:    u.Email,
		Phone:    u.Phone,
		RoleId:   u.RoleId,
	}
}
