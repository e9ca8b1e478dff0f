package extract

// Correction tables. Spellings are matched after cleaning, so forms that
// differ only by zero-width joiners, Arabic yeh/kaf or digit glyphs need
// not be listed separately; forms that differ by spacing or wording do.

var balanceSheetSchema = MustSchema(BalanceSheet,
	Field{"cash", []string{"موجودی نقد", "موجودی نقد و بانک", "وجوه نقد"}},
	Field{"short_term_investments", []string{"سرمایهگذاریهای کوتاهمدت", "سرمایه گذاری های کوتاه مدت", "سرمایه گذاریهای کوتاه مدت"}},
	Field{"trade_receivables", []string{"دریافتنیهای تجاری", "دریافتنی های تجاری", "حسابها و اسناد دریافتنی تجاری"}},
	Field{"other_receivables", []string{"دریافتنیهای غیرتجاری", "دریافتنی های غیرتجاری", "سایر حسابها و اسناد دریافتنی"}},
	Field{"inventory", []string{"موجودی مواد و کالا", "موجودی کالا", "موجودی مواد و کالا ساخته شده"}},
	Field{"prepayments", []string{"پیش پرداختها", "پیش پرداخت ها", "سفارشات و پیش پرداختها", "سفارشات و پیش پرداخت ها"}},
	Field{"assets_held_for_sale", []string{"داراییهای نگهداری شده برای فروش", "دارایی های نگهداری شده برای فروش"}},
	Field{"total_current_assets", []string{"جمع داراییهای جاری", "جمع دارایی های جاری"}},
	Field{"long_term_receivables", []string{"دریافتنیهای بلندمدت", "دریافتنی های بلندمدت", "دریافتنی های بلند مدت"}},
	Field{"long_term_investments", []string{"سرمایهگذاریهای بلندمدت", "سرمایه گذاری های بلندمدت", "سرمایه گذاری های بلند مدت"}},
	Field{"investment_property", []string{"سرمایهگذاری در املاک", "سرمایه گذاری در املاک"}},
	Field{"intangible_assets", []string{"داراییهای نامشهود", "دارایی های نامشهود"}},
	Field{"fixed_assets", []string{"داراییهای ثابت مشهود", "دارایی های ثابت مشهود"}},
	Field{"other_assets", []string{"سایر داراییها", "سایر دارایی ها"}},
	Field{"total_non_current_assets", []string{"جمع داراییهای غیرجاری", "جمع دارایی های غیرجاری", "جمع دارایی های غیر جاری"}},
	Field{"total_assets", []string{"جمع داراییها", "جمع دارایی ها", "جمع کل داراییها", "جمع کل دارایی ها"}},
	Field{"trade_payables", []string{"پرداختنیهای تجاری", "پرداختنی های تجاری", "حسابها و اسناد پرداختنی تجاری"}},
	Field{"other_payables", []string{"پرداختنیهای غیرتجاری", "پرداختنی های غیرتجاری", "سایر حسابها و اسناد پرداختنی"}},
	Field{"tax_payable", []string{"مالیات پرداختنی", "ذخیره مالیات"}},
	Field{"dividends_payable", []string{"سود سهام پرداختنی"}},
	Field{"short_term_loans", []string{"تسهیلات مالی", "تسهیلات مالی دریافتی", "تسهیلات مالی جاری"}},
	Field{"provisions", []string{"ذخایر"}},
	Field{"advances_received", []string{"پیشدریافتها", "پیش دریافت ها", "پیش دریافتها"}},
	Field{"total_current_liabilities", []string{"جمع بدهیهای جاری", "جمع بدهی های جاری"}},
	Field{"long_term_payables", []string{"پرداختنیهای بلندمدت", "پرداختنی های بلندمدت", "پرداختنی های بلند مدت"}},
	Field{"long_term_loans", []string{"تسهیلات مالی بلندمدت", "تسهیلات مالی بلند مدت"}},
	Field{"employee_benefits", []string{"ذخیره مزایای پایان خدمت کارکنان"}},
	Field{"total_non_current_liabilities", []string{"جمع بدهیهای غیرجاری", "جمع بدهی های غیرجاری", "جمع بدهی های غیر جاری"}},
	Field{"total_liabilities", []string{"جمع بدهیها", "جمع بدهی ها"}},
	Field{"capital", []string{"سرمایه"}},
	Field{"capital_increase_in_progress", []string{"افزایش سرمایه در جریان"}},
	Field{"share_premium", []string{"صرف سهام"}},
	Field{"legal_reserve", []string{"اندوخته قانونی"}},
	Field{"other_reserves", []string{"سایر اندوختهها", "سایر اندوخته ها"}},
	Field{"retained_earnings", []string{"سود (زیان) انباشته", "سود انباشته", "سود(زیان) انباشته"}},
	Field{"treasury_shares", []string{"سهام خزانه"}},
	Field{"total_equity", []string{"جمع حقوق مالکانه", "جمع حقوق صاحبان سهام"}},
	Field{"total_liabilities_and_equity", []string{
		"جمع بدهیها و حقوق مالکانه",
		"جمع بدهی ها و حقوق مالکانه",
		"جمع بدهیها و حقوق صاحبان سهام",
		"جمع بدهی ها و حقوق صاحبان سهام",
	}},
)

var profitLossSchema = MustSchema(ProfitLoss,
	Field{"revenue", []string{"درآمدهای عملیاتی", "درآمد های عملیاتی", "فروش خالص", "فروش خالص و درآمد ارائه خدمات"}},
	Field{"cost_of_revenue", []string{"بهای تمام شده درآمدهای عملیاتی", "بهای تمام شده کالای فروش رفته", "بهای تمامشده درآمدهای عملیاتی"}},
	Field{"gross_profit", []string{"سود (زیان) ناخالص", "سود ناخالص", "سود(زیان) ناخالص"}},
	Field{"selling_admin_expenses", []string{"هزینههای فروش، اداری و عمومی", "هزینه های فروش، اداری و عمومی", "هزینه های فروش اداری و عمومی"}},
	Field{"impairment_of_receivables", []string{"هزینه کاهش ارزش دریافتنیها", "هزینه کاهش ارزش دریافتنی ها"}},
	Field{"other_operating_income", []string{"سایر درآمدها", "سایر درآمدهای عملیاتی", "سایر درآمد های عملیاتی"}},
	Field{"other_operating_expenses", []string{"سایر هزینهها", "سایر هزینه ها", "سایر هزینه های عملیاتی"}},
	Field{"operating_profit", []string{"سود (زیان) عملیاتی", "سود عملیاتی", "سود(زیان) عملیاتی"}},
	Field{"finance_costs", []string{"هزینههای مالی", "هزینه های مالی"}},
	Field{"other_non_operating_income", []string{
		"سایر درآمدها و هزینههای غیرعملیاتی",
		"سایر درآمدها و هزینه های غیرعملیاتی",
		"سایر درآمدها و هزینه های غیر عملیاتی",
	}},
	Field{"profit_before_tax", []string{
		"سود (زیان) عملیات در حال تداوم قبل از مالیات",
		"سود (زیان) قبل از مالیات",
		"سود قبل از مالیات",
	}},
	Field{"income_tax", []string{"مالیات بر درآمد", "هزینه مالیات بر درآمد"}},
	Field{"profit_continuing_operations", []string{"سود (زیان) خالص عملیات در حال تداوم", "سود خالص عملیات در حال تداوم"}},
	Field{"profit_discontinued_operations", []string{"سود (زیان) عملیات متوقف شده", "سود (زیان) خالص عملیات متوقف شده"}},
	Field{"net_profit", []string{"سود (زیان) خالص", "سود خالص", "سود(زیان) خالص"}},
	Field{"eps_operating", []string{"عملیاتی (ریال)", "سود (زیان) پایه هر سهم عملیاتی"}},
	Field{"eps_non_operating", []string{"غیرعملیاتی (ریال)", "سود (زیان) پایه هر سهم غیرعملیاتی"}},
	Field{"eps", []string{"سود (زیان) پایه هر سهم", "سود پایه هر سهم", "سود (زیان) خالص هر سهم– ریال"}},
	Field{"dps", []string{"سود نقدی هر سهم (ریال)", "سود نقدی هر سهم"}},
	Field{"capital", []string{"سرمایه", "سرمایه (میلیون ریال)"}},
)

var cashFlowSchema = MustSchema(CashFlow,
	Field{"cash_from_operations", []string{"نقد حاصل از عملیات", "نقد حاصل از (مصرف شده در) عملیات"}},
	Field{"income_tax_paid", []string{"پرداختهای نقدی بابت مالیات بر درآمد", "پرداخت های نقدی بابت مالیات بر درآمد"}},
	Field{"operating_cash_flow", []string{
		"جریان خالص ورود (خروج) نقد حاصل از فعالیتهای عملیاتی",
		"جریان خالص ورود (خروج) نقد حاصل از فعالیت های عملیاتی",
	}},
	Field{"capex", []string{
		"پرداختهای نقدی برای خرید داراییهای ثابت مشهود",
		"پرداخت های نقدی برای خرید دارایی های ثابت مشهود",
	}},
	Field{"investing_cash_flow", []string{
		"جریان خالص ورود (خروج) نقد حاصل از فعالیتهای سرمایهگذاری",
		"جریان خالص ورود (خروج) نقد حاصل از فعالیت های سرمایه گذاری",
	}},
	Field{"cash_flow_before_financing", []string{
		"جریان خالص ورود (خروج) نقد قبل از فعالیتهای تامین مالی",
		"جریان خالص ورود (خروج) نقد قبل از فعالیت های تامین مالی",
	}},
	Field{"dividends_paid", []string{"پرداختهای نقدی بابت سود سهام", "پرداخت های نقدی بابت سود سهام"}},
	Field{"financing_cash_flow", []string{
		"جریان خالص ورود (خروج) نقد حاصل از فعالیتهای تأمین مالی",
		"جریان خالص ورود (خروج) نقد حاصل از فعالیت های تامین مالی",
	}},
	Field{"net_change_in_cash", []string{"خالص افزایش (کاهش) در موجودی نقد", "خالص افزایش (کاهش) موجودی نقد"}},
	Field{"cash_beginning", []string{"مانده موجودی نقد در ابتدای سال", "مانده موجودی نقد در ابتدای دوره", "موجودی نقد در ابتدای سال"}},
	Field{"fx_effect", []string{"تاثیر تغییرات نرخ ارز", "تأثیر تغییرات نرخ ارز"}},
	Field{"cash_end", []string{"مانده موجودی نقد در پایان سال", "مانده موجودی نقد در پایان دوره", "موجودی نقد در پایان سال"}},
	Field{"non_cash_transactions", []string{"معاملات غیرنقدی", "معاملات غیر نقدی"}},
)
